// Package progression models a participant's progression inside a guild:
// the experience curve, the Player with its currencies and task slot, and the
// guild-independent DailyCounter. Everything here is in-memory and synchronous;
// persistence goes through the typed records in records.go.
package progression

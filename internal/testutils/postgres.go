package testutils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/guild-progression/internal/postgres"
)

var _ postgres.DB = pgxmock.PgxPoolIface(nil)

// CreateTestPostgresMock creates a pgxmock pool whose expectations must all
// be met by the end of the test
func CreateTestPostgresMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create postgres mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mock
}

// JSONArg matches a statement argument holding a JSON document equal to Want
type JSONArg struct {
	Want string
}

// Match implements pgxmock.Argument
func (a JSONArg) Match(v any) bool {
	var got []byte
	switch s := v.(type) {
	case string:
		got = []byte(s)
	case []byte:
		got = s
	default:
		return false
	}

	var want, have any
	if err := json.Unmarshal([]byte(a.Want), &want); err != nil {
		return false
	}
	if err := json.Unmarshal(got, &have); err != nil {
		return false
	}
	wantJSON, _ := json.Marshal(want)
	haveJSON, _ := json.Marshal(have)
	return bytes.Equal(wantJSON, haveJSON)
}

// TimeArg matches a *time.Time argument at the same instant as Want, or a
// nil one when Want is nil
type TimeArg struct {
	Want *time.Time
}

// Match implements pgxmock.Argument
func (a TimeArg) Match(v any) bool {
	got, ok := v.(*time.Time)
	if !ok {
		return false
	}
	if a.Want == nil || got == nil {
		return a.Want == nil && got == nil
	}
	return a.Want.Equal(*got)
}

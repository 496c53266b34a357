// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	dailycounterrepo "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter"
	dailycountermock "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter/mock"
	playerrepo "github.com/KirkDiggler/guild-progression/internal/repositories/player"
	playermock "github.com/KirkDiggler/guild-progression/internal/repositories/player/mock"
)

// ExpectPlayerGet sets up a repository lookup. A nil record returns NotFound.
func ExpectPlayerGet(
	ctx context.Context, mockRepo *playermock.MockRepository,
	guildID, dcID string, rec *progression.PlayerRecord,
) *gomock.Call {
	call := mockRepo.EXPECT().Get(ctx, playerrepo.GetInput{GuildID: guildID, DcID: dcID})
	if rec == nil {
		return call.Return(nil, errors.NotFoundf("player %s not found", progression.PlayerKey(guildID, dcID)))
	}
	return call.Return(&playerrepo.GetOutput{Record: rec}, nil)
}

// ExpectPlayerSave captures the saved record into *saved and echoes it back
func ExpectPlayerSave(
	ctx context.Context, mockRepo *playermock.MockRepository, saved **progression.PlayerRecord,
) *gomock.Call {
	return mockRepo.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input playerrepo.SaveInput) (*playerrepo.SaveOutput, error) {
			if saved != nil {
				*saved = input.Record
			}
			return &playerrepo.SaveOutput{Record: input.Record}, nil
		})
}

// ExpectCounterGet sets up a counter lookup. A nil record returns NotFound.
func ExpectCounterGet(
	ctx context.Context, mockRepo *dailycountermock.MockRepository,
	dcID string, rec *progression.DailyCounterRecord,
) *gomock.Call {
	call := mockRepo.EXPECT().Get(ctx, dailycounterrepo.GetInput{DcID: dcID})
	if rec == nil {
		return call.Return(nil, errors.NotFoundf("daily counter for %s not found", dcID))
	}
	return call.Return(&dailycounterrepo.GetOutput{Record: rec}, nil)
}

// ExpectCounterSave captures the saved record into *saved and echoes it back
func ExpectCounterSave(
	ctx context.Context, mockRepo *dailycountermock.MockRepository, saved **progression.DailyCounterRecord,
) *gomock.Call {
	return mockRepo.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input dailycounterrepo.SaveInput) (*dailycounterrepo.SaveOutput, error) {
			if saved != nil {
				*saved = input.Record
			}
			return &dailycounterrepo.SaveOutput{Record: input.Record}, nil
		})
}

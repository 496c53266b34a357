package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "player not found",
			expected: "NOT_FOUND: player not found",
		},
		{
			name:     "out of range error",
			code:     errors.CodeOutOfRange,
			message:  "level 0 is outside 1..100",
			expected: "OUT_OF_RANGE: level 0 is outside 1..100",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to load player")

	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal("failed to load player", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCodeAndReason() {
	baseErr := errors.Rejected(errors.CodeFailedPrecondition, "insufficient_balance", "not enough silverCoin")
	wrapped := errors.Wrap(baseErr, "update currency")

	s.Equal(errors.CodeFailedPrecondition, wrapped.Code)
	s.Equal("insufficient_balance", errors.GetReason(wrapped))
	s.True(errors.IsRejection(wrapped))
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("dial tcp: timeout")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeUnavailable, "store unavailable")

	s.Equal(errors.CodeUnavailable, wrapped.Code)
	s.Equal(baseErr, wrapped.Unwrap())
	s.True(errors.IsUnavailable(wrapped))
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestIsMatchesReason() {
	taskTaken := errors.Rejected(errors.CodeFailedPrecondition, "task_already_assigned", "busy")
	broke := errors.Rejected(errors.CodeFailedPrecondition, "insufficient_balance", "broke")

	s.True(errors.Is(taskTaken, errors.Rejected(errors.CodeFailedPrecondition, "task_already_assigned", "")))
	s.False(errors.Is(broke, errors.Rejected(errors.CodeFailedPrecondition, "task_already_assigned", "")))
	s.True(errors.Is(broke, errors.FailedPrecondition("any")))
}

func (s *ErrorsTestSuite) TestReasonHelpers() {
	err := errors.Rejected(errors.CodeInvalidArgument, "unknown_currency", "unknown currency goldCoin")

	s.True(errors.HasReason(err, "unknown_currency"))
	s.False(errors.HasReason(err, "insufficient_balance"))
	s.False(errors.HasReason(nil, "unknown_currency"))
	s.Equal("", errors.GetReason(fmt.Errorf("plain")))
	s.False(errors.IsRejection(errors.NotFound("player not found")))
	s.False(errors.IsRejection(errors.InvalidArgument("no reason attached")))
}

func (s *ErrorsTestSuite) TestGetCode() {
	err := errors.NotFound("test")
	wrapped := errors.Wrap(err, "wrapped")

	s.Equal(errors.CodeNotFound, errors.GetCode(err))
	s.Equal(errors.CodeNotFound, errors.GetCode(wrapped))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	err := errors.NotFoundf("player %s not found", "u1")
	wrapped := errors.Wrap(err, "wrapped message")

	s.Equal("player u1 not found", errors.GetMessage(err))
	s.Equal("wrapped message", errors.GetMessage(wrapped))
	s.Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
}

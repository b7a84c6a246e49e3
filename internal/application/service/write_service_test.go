package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validInput() CreateTransactionInput {
	return CreateTransactionInput{
		UserID:      "user_1",
		Amount:      "42.75",
		Description: "Weekly groceries",
		Type:        "expense",
		Category:    "food",
	}
}

// echoInsert makes the mock repository behave like a store that assigns an ID
func echoInsert(repo *mocks.MockTransactionRepository, ctx context.Context) {
	repo.On("Insert", ctx, mock.AnythingOfType("*entity.Transaction")).
		Return(func(_ context.Context, tx *entity.Transaction) *entity.Transaction {
			stored := *tx
			stored.ID = "generated-id"
			return &stored
		}, nil)
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid transaction", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewWriteService(repo, quietLogger())

		repo.On("Insert", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.UserID == "user_1" &&
				tx.Amount.Equal(decimal.RequireFromString("42.75")) &&
				tx.Description == "Weekly groceries" &&
				tx.Type == entity.TypeExpense &&
				tx.Category == entity.CategoryFood
		})).Return(&entity.Transaction{ID: "tx-1", UserID: "user_1"}, nil).Once()

		result, err := svc.CreateTransaction(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, "tx-1", result.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Date is stamped at call time", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewWriteService(repo, quietLogger())
		echoInsert(repo, ctx)

		before := time.Now().UTC()
		result, err := svc.CreateTransaction(ctx, validInput())

		require.NoError(t, err)
		assert.False(t, result.Date.Before(before))
		assert.Equal(t, time.UTC, result.Date.Location())
		assert.Equal(t, "generated-id", result.ID)
	})

	t.Run("Injected clock", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		svc := NewWriteService(repo, quietLogger(), WithClock(func() time.Time { return fixed }))
		echoInsert(repo, ctx)

		result, err := svc.CreateTransaction(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, fixed, result.Date)
	})

	t.Run("Amount keeps its parsed value", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewWriteService(repo, quietLogger())
		echoInsert(repo, ctx)

		for _, raw := range []string{"0", "0.1", "19.99", "1e3", " 250 "} {
			in := validInput()
			in.Amount = raw

			result, err := svc.CreateTransaction(ctx, in)

			require.NoError(t, err, raw)
			want := decimal.RequireFromString(strings.TrimSpace(raw))
			assert.True(t, want.Equal(result.Amount), raw)
		}
	})

	t.Run("Rejects non-numeric amount", func(t *testing.T) {
		for _, raw := range []string{"abc", "12abc", "NaN", "Infinity", "-5", "1,50"} {
			repo := new(mocks.MockTransactionRepository)
			svc := NewWriteService(repo, quietLogger())

			in := validInput()
			in.Amount = raw

			result, err := svc.CreateTransaction(ctx, in)

			assert.Nil(t, result, raw)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, raw)
			assert.Equal(t, MsgInvalidAmount, ve.Message, raw)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		}
	})

	t.Run("Rejects amounts outside the supported magnitude", func(t *testing.T) {
		for _, raw := range []string{"1e400", "1e999999999", "1e-999999999", strings.Repeat("9", 65)} {
			repo := new(mocks.MockTransactionRepository)
			svc := NewWriteService(repo, quietLogger())

			in := validInput()
			in.Amount = raw

			result, err := svc.CreateTransaction(ctx, in)

			assert.Nil(t, result, raw)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, raw)
			assert.Equal(t, MsgInvalidAmount, ve.Message, raw)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		}
	})

	t.Run("Rejects user ids no backend can key on", func(t *testing.T) {
		for _, userID := range []string{"victim\x002024-03-20", "a/b", `a\b`, "a#b", "a?b", "tab\tid", strings.Repeat("u", 257)} {
			repo := new(mocks.MockTransactionRepository)
			svc := NewWriteService(repo, quietLogger())

			in := validInput()
			in.UserID = userID

			_, err := svc.CreateTransaction(ctx, in)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve, userID)
			assert.Equal(t, MsgInvalidUserID, ve.Message)
			assert.Equal(t, "userId", ve.Field)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		}
	})

	t.Run("Rejects missing fields", func(t *testing.T) {
		cases := map[string]func(in *CreateTransactionInput){
			"userId":      func(in *CreateTransactionInput) { in.UserID = "" },
			"amount":      func(in *CreateTransactionInput) { in.Amount = "" },
			"description": func(in *CreateTransactionInput) { in.Description = "   " },
			"type":        func(in *CreateTransactionInput) { in.Type = "" },
			"category":    func(in *CreateTransactionInput) { in.Category = "" },
		}

		for field, modify := range cases {
			repo := new(mocks.MockTransactionRepository)
			svc := NewWriteService(repo, quietLogger())

			in := validInput()
			modify(&in)

			_, err := svc.CreateTransaction(ctx, in)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve, field)
			assert.Equal(t, MsgMissingFields, ve.Message, field)
			assert.Equal(t, field, ve.Field)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		}
	})

	t.Run("Rejects values outside the enumerations", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewWriteService(repo, quietLogger())

		in := validInput()
		in.Type = "transfer"
		_, err := svc.CreateTransaction(ctx, in)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, MsgInvalidType, ve.Message)

		in = validInput()
		in.Category = "travel"
		_, err = svc.CreateTransaction(ctx, in)
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, MsgInvalidCategory, ve.Message)

		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewWriteService(repo, quietLogger())

		repo.On("Insert", ctx, mock.Anything).Return(nil, errors.New("repository error")).Once()

		result, err := svc.CreateTransaction(ctx, validInput())

		assert.Nil(t, result)
		assert.True(t, IsUpstreamError(err))
		assert.False(t, IsValidationError(err))
		repo.AssertExpectations(t)
	})

	t.Run("Publishes created event", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		publisher := new(mocks.MockEventPublisher)
		svc := NewWriteService(repo, quietLogger(), WithPublisher(publisher))
		echoInsert(repo, ctx)

		publisher.On("PublishTransactionCreated", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.ID == "generated-id"
		})).Return(nil).Once()

		_, err := svc.CreateTransaction(ctx, validInput())

		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("Publish failure does not fail the write", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		publisher := new(mocks.MockEventPublisher)
		log := new(mocks.MockLogger)
		svc := NewWriteService(repo, log, WithPublisher(publisher))
		echoInsert(repo, ctx)

		publisher.On("PublishTransactionCreated", ctx, mock.Anything).Return(errors.New("broker down")).Once()
		log.On("Info", "Transaction created", mock.Anything).Once()
		log.On("Warn", "Failed to publish transaction created event", mock.MatchedBy(func(fields map[string]interface{}) bool {
			return fields["id"] == "generated-id" && fields["error"] == "broker down"
		})).Once()

		result, err := svc.CreateTransaction(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, "generated-id", result.ID)
		log.AssertExpectations(t)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "0", want: "0"},
		{input: " 12.50 ", want: "12.5"},
		{input: "1e15", want: "1000000000000000"},
		{input: "0.000001", want: "0.000001"},
		{input: "1e16", wantErr: ErrAmountOutOfRange},
		{input: "1e400", wantErr: ErrAmountOutOfRange},
		{input: "1e999999999", wantErr: ErrAmountOutOfRange},
		{input: "1e-999999999", wantErr: ErrAmountOutOfRange},
		{input: "-1", wantErr: entity.ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}
}

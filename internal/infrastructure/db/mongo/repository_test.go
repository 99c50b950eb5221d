package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func duplicateIndexResponse(index, key string) bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: orderdesk.orders index: " + index + " dup key: " + key,
	})
}

func TestCounterRepository_Next(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("seeds missing counter with start value", func(mt *mtest.T) {
		repo := NewCounterRepository(mt.DB, domain.DefaultTicketStart)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateSuccessResponse(),
		)

		got, err := repo.Next(context.Background(), domain.TicketSequence)
		require.NoError(mt, err)
		assert.Equal(mt, int64(100), got)
	})

	mt.Run("increments existing counter", func(mt *mtest.T) {
		repo := NewCounterRepository(mt.DB, domain.DefaultTicketStart)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: domain.TicketSequence},
			{Key: "seq", Value: int64(101)},
		}}))

		got, err := repo.Next(context.Background(), domain.TicketSequence)
		require.NoError(mt, err)
		assert.Equal(mt, int64(101), got)
	})

	mt.Run("losing the seed race falls back to increment", func(mt *mtest.T) {
		repo := NewCounterRepository(mt.DB, domain.DefaultTicketStart)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			duplicateKeyResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: domain.TicketSequence},
				{Key: "seq", Value: int64(101)},
			}}),
		)

		got, err := repo.Next(context.Background(), domain.TicketSequence)
		require.NoError(mt, err)
		assert.Equal(mt, int64(101), got)
	})

	mt.Run("propagates store failures", func(mt *mtest.T) {
		repo := NewCounterRepository(mt.DB, domain.DefaultTicketStart)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		_, err := repo.Next(context.Background(), domain.TicketSequence)
		assert.Error(mt, err)
	})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &domain.User{Username: "alice", PasswordHash: "hash", Roles: []string{"staff"}, Active: true}
		require.NoError(mt, repo.Create(context.Background(), u))
		_, err := primitive.ObjectIDFromHex(u.ID)
		assert.NoError(mt, err)
	})

	mt.Run("create maps duplicate key to duplicate username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.Create(context.Background(), &domain.User{Username: "alice", Roles: []string{"staff"}})
		assert.ErrorIs(mt, err, domain.ErrDuplicateUsername)
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
	})

	mt.Run("find by username not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orderdesk.users", mtest.FirstBatch))

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("list decodes documents", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		now := time.Now().UTC().Truncate(time.Millisecond)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orderdesk.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "username", Value: "alice"}, {Key: "roles", Value: bson.A{"staff"}}, {Key: "active", Value: true}, {Key: "created_at", Value: now}},
			bson.D{{Key: "_id", Value: b}, {Key: "username", Value: "bob"}, {Key: "roles", Value: bson.A{"Admin"}}, {Key: "active", Value: false}, {Key: "created_at", Value: now}},
		))

		users, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, a.Hex(), users[0].ID)
		assert.Equal(mt, "alice", users[0].Username)
		assert.Empty(mt, users[0].PasswordHash)
		assert.False(mt, users[1].Active)
		assert.Equal(mt, []string{"Admin"}, users[1].Roles)
	})

	mt.Run("find by ids skips malformed ids", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		a := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orderdesk.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "username", Value: "alice"}},
		))

		got, err := repo.FindByIDs(context.Background(), []string{a.Hex(), "junk"})
		require.NoError(mt, err)
		require.Contains(mt, got, a.Hex())
		assert.Equal(mt, "alice", got[a.Hex()].Username)
	})

	mt.Run("replace unknown user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}, bson.E{Key: "nModified", Value: int32(0)}))

		err := repo.Replace(context.Background(), &domain.User{ID: primitive.NewObjectID().Hex(), Username: "x"})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("replace into taken username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.Replace(context.Background(), &domain.User{ID: primitive.NewObjectID().Hex(), Username: "alice"})
		assert.ErrorIs(mt, err, domain.ErrDuplicateUsername)
	})
}

func TestOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create maps duplicate key to duplicate title", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.Create(context.Background(), &domain.Order{
			UserID: primitive.NewObjectID().Hex(), Title: "T1", Text: "body", Ticket: 100,
		})
		assert.ErrorIs(mt, err, domain.ErrDuplicateTitle)
	})

	mt.Run("create maps title index violation to duplicate title", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(duplicateIndexResponse(titleIndex, `{ title: "T1" }`))

		err := repo.Create(context.Background(), &domain.Order{
			UserID: primitive.NewObjectID().Hex(), Title: "T1", Text: "body", Ticket: 100,
		})
		assert.ErrorIs(mt, err, domain.ErrDuplicateTitle)
	})

	mt.Run("create reports ticket collision as internal error", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(duplicateIndexResponse(ticketIndex, "{ ticket: 100 }"))

		err := repo.Create(context.Background(), &domain.Order{
			UserID: primitive.NewObjectID().Hex(), Title: "T1", Text: "body", Ticket: 100,
		})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrDuplicateTitle)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
		assert.Contains(mt, err.Error(), "ticket 100 already issued")
	})

	mt.Run("create rejects malformed user id", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)

		err := repo.Create(context.Background(), &domain.Order{UserID: "nope", Title: "T1", Text: "body"})
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
	})

	mt.Run("count by user", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orderdesk.orders", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(2)}},
		))

		n, err := repo.CountByUser(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("find by title decodes ticket", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		id, user := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orderdesk.orders", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "user", Value: user},
				{Key: "title", Value: "T1"},
				{Key: "text", Value: "body"},
				{Key: "completed", Value: false},
				{Key: "ticket", Value: int64(100)},
			},
		))

		o, err := repo.FindByTitle(context.Background(), "T1")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), o.ID)
		assert.Equal(mt, user.Hex(), o.UserID)
		assert.Equal(mt, int64(100), o.Ticket)
	})

	mt.Run("replace existing order", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}, bson.E{Key: "nModified", Value: int32(1)}))

		err := repo.Replace(context.Background(), &domain.Order{
			ID: primitive.NewObjectID().Hex(), UserID: primitive.NewObjectID().Hex(), Title: "T1", Text: "x", Completed: true,
		})
		assert.NoError(mt, err)
	})

	mt.Run("delete unknown order", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrOrderNotFound)
	})
}

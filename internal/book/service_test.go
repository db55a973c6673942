package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	rating := 4.0
	q := Query{
		Filter: Filter{Author: "Tolkien", MinRating: &rating},
		Sort:   DefaultSort(),
		Page:   2,
		Limit:  5,
	}

	t.Run("count uses the same filter", func(t *testing.T) {
		mockRepo.EXPECT().Find(gomock.Any(), q).Return([]Book{{ID: "6"}, {ID: "7"}}, nil)
		mockRepo.EXPECT().Count(gomock.Any(), q.Filter).Return(12, nil)

		page, err := service.List(context.Background(), q)

		require.NoError(t, err)
		assert.Len(t, page.Books, 2)
		assert.Equal(t, 12, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.Limit)
		assert.Equal(t, 3, page.Pages())
	})

	t.Run("nil result becomes empty slice", func(t *testing.T) {
		mockRepo.EXPECT().Find(gomock.Any(), q).Return(nil, nil)
		mockRepo.EXPECT().Count(gomock.Any(), q.Filter).Return(0, nil)

		page, err := service.List(context.Background(), q)

		require.NoError(t, err)
		assert.NotNil(t, page.Books)
		assert.Empty(t, page.Books)
	})

	t.Run("find error", func(t *testing.T) {
		mockRepo.EXPECT().Find(gomock.Any(), q).Return(nil, context.DeadlineExceeded)

		_, err := service.List(context.Background(), q)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("count error", func(t *testing.T) {
		boom := errors.New("boom")
		mockRepo.EXPECT().Find(gomock.Any(), q).Return([]Book{}, nil)
		mockRepo.EXPECT().Count(gomock.Any(), q.Filter).Return(0, boom)

		_, err := service.List(context.Background(), q)
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	t.Run("applies patch", func(t *testing.T) {
		price := 9.99
		p := Patch{Price: &price}
		mockRepo.EXPECT().Update(gomock.Any(), "1", p).Return(Book{ID: "1", Price: 9.99}, nil)

		b, err := service.Update(context.Background(), "1", p)
		require.NoError(t, err)
		assert.Equal(t, 9.99, b.Price)
	})

	t.Run("empty patch reads current record", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "1").Return(Book{ID: "1"}, nil)

		b, err := service.Update(context.Background(), "1", Patch{})
		require.NoError(t, err)
		assert.Equal(t, "1", b.ID)
	})
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
		b.ID = "new-id"
		return nil
	})

	b, err := service.Create(context.Background(), Book{Title: "The Hobbit"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", b.ID)
	assert.Equal(t, "The Hobbit", b.Title)
}

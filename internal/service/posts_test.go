package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/blogadmin/internal/adapter/repository/memory"
	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/port"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc   *PostsImpl
	posts *memory.PostRepositoryStub
	pub   *recordingPublisher
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		posts: memory.NewPostRepositoryStub(),
		pub:   &recordingPublisher{},
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
	}
	cats := memory.NewCategoryRepositoryStub(
		domain.Category{ID: 1, Name: "go"},
		domain.Category{ID: 2, Name: "databases"},
		domain.Category{ID: 3, Name: "ops"},
	)
	tags := memory.NewTagRepositoryStub(
		domain.Tag{ID: 10, Name: "beginner"},
		domain.Tag{ID: 20, Name: "advanced"},
	)
	f.svc = NewPostsImpl(f.posts, cats, tags, memory.NewTxManager(),
		WithPublisher(f.pub),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) create(t *testing.T, cats, tags []uint) *domain.Post {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), port.CreatePostRequest{
		Title: "Hello", Content: "World", CategoryIDs: cats, TagIDs: tags,
	})
	require.NoError(t, err)
	return post
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, []uint{1, 3}, []uint{10})

	assert.NotZero(t, post.ID)
	assert.ElementsMatch(t, []uint{1, 3}, post.CategoryIDs())
	assert.Equal(t, []uint{10}, post.TagIDs())
	assert.Equal(t, f.now.UTC(), post.Created)
	assert.Equal(t, time.UTC, post.Created.Location())
	assert.EqualValues(t, 1, post.Version)
	assert.Equal(t, []string{domain.EventPostCreated}, f.pub.types())

	stored, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 3}, stored.CategoryIDs())
}

func TestCreatePostEmptyAssociations(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, nil, []uint{})

	assert.Empty(t, post.Categories)
	assert.Empty(t, post.Tags)
}

func TestCreatePostRejects(t *testing.T) {
	tests := []struct {
		name string
		req  port.CreatePostRequest
	}{
		{"missing title", port.CreatePostRequest{Content: "c"}},
		{"blank content", port.CreatePostRequest{Title: "t", Content: "  \t"}},
		{"unknown category", port.CreatePostRequest{Title: "t", Content: "c", CategoryIDs: []uint{42}}},
		{"unknown tag", port.CreatePostRequest{Title: "t", Content: "c", CategoryIDs: []uint{1}, TagIDs: []uint{99}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreatePost(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))

			posts, err := f.svc.ListPosts(context.Background(), port.ListPostsRequest{})
			require.NoError(t, err)
			assert.Empty(t, posts)
			assert.Empty(t, f.pub.types())
		})
	}
}

func TestUpdatePostReplacesAssociations(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, []uint{1}, []uint{10})
	created := post.Created
	f.now = f.now.Add(time.Hour)

	err := f.svc.UpdatePost(context.Background(), post.ID, port.UpdatePostRequest{
		ID: post.ID, Title: "New", Content: "Body", CategoryIDs: []uint{2, 3}, TagIDs: []uint{20},
	})
	require.NoError(t, err)

	got, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Body", got.Content)
	assert.ElementsMatch(t, []uint{2, 3}, got.CategoryIDs())
	assert.Equal(t, []uint{20}, got.TagIDs())
	assert.Equal(t, created, got.Created)
	assert.EqualValues(t, 2, got.Version)
	assert.Equal(t, []string{domain.EventPostCreated, domain.EventPostUpdated}, f.pub.types())
}

func TestUpdatePostUnknownTagKeepsPriorState(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, []uint{3}, []uint{20})

	err := f.svc.UpdatePost(context.Background(), post.ID, port.UpdatePostRequest{
		ID: post.ID, Title: "Changed", Content: "Changed", CategoryIDs: []uint{1, 2}, TagIDs: []uint{99},
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	got, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, []uint{3}, got.CategoryIDs())
	assert.Equal(t, []uint{20}, got.TagIDs())
	assert.EqualValues(t, 1, got.Version)
}

func TestUpdatePostIsIdempotent(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, nil, nil)
	req := port.UpdatePostRequest{ID: post.ID, Title: "Same", Content: "Same", CategoryIDs: []uint{1}, TagIDs: []uint{10, 20}}

	require.NoError(t, f.svc.UpdatePost(context.Background(), post.ID, req))
	first, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdatePost(context.Background(), post.ID, req))
	second, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.ElementsMatch(t, first.CategoryIDs(), second.CategoryIDs())
	assert.ElementsMatch(t, first.TagIDs(), second.TagIDs())
}

func TestUpdatePostIDMismatch(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, nil, nil)

	err := f.svc.UpdatePost(context.Background(), post.ID, port.UpdatePostRequest{ID: post.ID + 1, Title: "t", Content: "c"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestUpdatePostMissing(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdatePost(context.Background(), 77, port.UpdatePostRequest{ID: 77, Title: "t", Content: "c"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

// vanishingRepo deletes the post right before the versioned write, as a
// concurrent DELETE would.
type vanishingRepo struct {
	*memory.PostRepositoryStub
	bumpInstead bool
}

func (r *vanishingRepo) Update(ctx context.Context, post *domain.Post) error {
	if r.bumpInstead {
		stale := post.Clone()
		if err := r.PostRepositoryStub.Update(ctx, stale); err != nil {
			return err
		}
	} else if err := r.PostRepositoryStub.Delete(ctx, post.ID); err != nil {
		return err
	}
	return r.PostRepositoryStub.Update(ctx, post)
}

func TestUpdatePostConcurrentDeleteIsNotFound(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, nil, nil)
	f.svc.PostRepo = &vanishingRepo{PostRepositoryStub: f.posts}

	err := f.svc.UpdatePost(context.Background(), post.ID, port.UpdatePostRequest{ID: post.ID, Title: "t", Content: "c"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "already deleted")
}

func TestUpdatePostConcurrentUpdateIsConflict(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, nil, nil)
	f.svc.PostRepo = &vanishingRepo{PostRepositoryStub: f.posts, bumpInstead: true}

	err := f.svc.UpdatePost(context.Background(), post.ID, port.UpdatePostRequest{ID: post.ID, Title: "t", Content: "c"})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, []uint{1}, []uint{10})

	require.NoError(t, f.svc.DeletePost(context.Background(), post.ID))

	_, err := f.svc.GetPost(context.Background(), post.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, []string{domain.EventPostCreated, domain.EventPostDeleted}, f.pub.types())
}

func TestDeletePostMissingLeavesStore(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, nil, nil)

	err := f.svc.DeletePost(context.Background(), post.ID+100)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	posts, err := f.svc.ListPosts(context.Background(), port.ListPostsRequest{})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestListPostsSearch(t *testing.T) {
	f := newFixture(t)
	for _, title := range []string{"Go Generics", "Intro to SQL", "generic handlers"} {
		_, err := f.svc.CreatePost(context.Background(), port.CreatePostRequest{Title: title, Content: "x"})
		require.NoError(t, err)
	}

	posts, err := f.svc.ListPosts(context.Background(), port.ListPostsRequest{SearchKey: "GENERIC"})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Go Generics", posts[0].Title)
	assert.Equal(t, "generic handlers", posts[1].Title)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.pub.err = stderrors.New("broker down")

	post := f.create(t, nil, nil)
	assert.NotZero(t, post.ID)
}

// stuckPublisher blocks until its context ends, like a writer retrying
// against unreachable brokers.
type stuckPublisher struct {
	err chan error
}

func (p *stuckPublisher) Publish(ctx context.Context, _ domain.Event) error {
	<-ctx.Done()
	p.err <- ctx.Err()
	return ctx.Err()
}

func (p *stuckPublisher) Close() error { return nil }

func TestPublishIsBoundedAndDetached(t *testing.T) {
	pub := &stuckPublisher{err: make(chan error, 1)}
	svc := NewPostsImpl(memory.NewPostRepositoryStub(), memory.NewCategoryRepositoryStub(), memory.NewTagRepositoryStub(), memory.NewTxManager(),
		WithPublisher(pub),
		WithPublishTimeout(20*time.Millisecond),
	)

	// A cancelled caller does not cut the publish short; it runs until
	// its own deadline.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	post, err := svc.CreatePost(ctx, port.CreatePostRequest{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, <-pub.err, context.DeadlineExceeded)
}

func TestListReferenceData(t *testing.T) {
	f := newFixture(t)

	cats, err := f.svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 3)

	tags, err := f.svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

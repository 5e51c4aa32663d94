package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/mediastore"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/poststore"
)

// fakeFetcher returns canned avatar bytes or a canned error.
type fakeFetcher struct {
	data   []byte
	err    error
	called bool
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.called = true
	return f.data, f.err
}

// spyStore wraps a real store and counts row creations.
type spyStore struct {
	poststore.Store
	creates int
}

func (s *spyStore) CreateInvisible(author, date, content string) (int64, error) {
	s.creates++
	return s.Store.CreateInvisible(author, date, content)
}

// failingMedia fails every write.
type failingMedia struct{}

func (failingMedia) Write(mediastore.Kind, int64, []byte) error {
	return fmt.Errorf("%w: disk full", apperr.ErrMedia)
}
func (failingMedia) URLPath(kind mediastore.Kind, id int64) string {
	return fmt.Sprintf("/assets/%s/%d.png", kind, id)
}

func testEnv(t *testing.T, fetcher Fetcher) (*Service, *spyStore) {
	t.Helper()

	dbFile, err := os.CreateTemp("", "mannaz-feed-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := poststore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	media, err := mediastore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	spy := &spyStore{Store: db}
	return NewService(spy, media, fetcher, nil), spy
}

func textOnly(author, date, text string) models.Submission {
	return models.Submission{Author: author, Date: date, Text: text}
}

func TestSubmitTextOnly(t *testing.T) {
	svc, _ := testEnv(t, &fakeFetcher{})

	// Scenario A: no avatar, no image.
	if _, err := svc.Submit(context.Background(), textOnly("alice", "2024-03-01", "hello")); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	got := items[0]
	want := Item{Author: "alice", AvatarPath: "", Date: "2024-03-01", ImagePath: "", Text: "hello"}
	if got != want {
		t.Errorf("item = %+v, want %+v", got, want)
	}
}

func TestSubmitBadDateShape(t *testing.T) {
	svc, spy := testEnv(t, &fakeFetcher{})

	// Scenario B: single-digit month/day fails the shape check.
	for _, date := range []string{"2024-3-1", "03-01-2024", "2024/03/01", "20240301", ""} {
		_, err := svc.Submit(context.Background(), textOnly("alice", date, "hello"))
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("date %q: error = %v, want ErrValidation", date, err)
		}
	}
	if spy.creates != 0 {
		t.Errorf("rows created = %d, want 0", spy.creates)
	}
}

func TestSubmitNonCalendarDatePasses(t *testing.T) {
	svc, _ := testEnv(t, &fakeFetcher{})

	// Shape-only check: not a real calendar date, still accepted.
	if _, err := svc.Submit(context.Background(), textOnly("alice", "9999-99-99", "hello")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmitWrongImageTypeBeforeFetch(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("png")}
	svc, spy := testEnv(t, fetcher)

	// Scenario C: JPEG declared type fails before any network call.
	sub := textOnly("alice", "2024-03-01", "hello")
	sub.AvatarURL = "http://example.com/pic"
	sub.Image = []byte("jpeg-bytes")
	sub.ImageType = "image/jpeg"

	_, err := svc.Submit(context.Background(), sub)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if fetcher.called {
		t.Error("avatar fetched despite validation failure")
	}
	if spy.creates != 0 {
		t.Errorf("rows created = %d, want 0", spy.creates)
	}
}

func TestSubmitFetchFailureNoRow(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: avatar is text/html, not a PNG", apperr.ErrFetch)}
	svc, spy := testEnv(t, fetcher)

	// Scenario D: avatar server responds with the wrong content type.
	sub := textOnly("alice", "2024-03-01", "hello")
	sub.AvatarURL = "http://example.com/pic"

	_, err := svc.Submit(context.Background(), sub)
	if !errors.Is(err, apperr.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
	if spy.creates != 0 {
		t.Errorf("rows created = %d, want 0", spy.creates)
	}
}

func TestSubmitMissingRequiredFields(t *testing.T) {
	svc, spy := testEnv(t, &fakeFetcher{})

	for name, sub := range map[string]models.Submission{
		"no author": textOnly("", "2024-03-01", "hello"),
		"no text":   textOnly("alice", "2024-03-01", ""),
	} {
		if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", name, err)
		}
	}
	if spy.creates != 0 {
		t.Errorf("rows created = %d, want 0", spy.creates)
	}
}

func TestSubmitWithAvatarAndImage(t *testing.T) {
	svc, _ := testEnv(t, &fakeFetcher{data: []byte("avatar-png")})

	sub := textOnly("bob", "2024-04-02", "media post")
	sub.AvatarURL = "http://example.com/avatar.png"
	sub.Image = []byte("image-png")
	sub.ImageType = "image/png"

	id, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	got := items[0]
	if got.AvatarPath != fmt.Sprintf("/assets/avatars/%d.png", id) {
		t.Errorf("avatar path = %q", got.AvatarPath)
	}
	if got.ImagePath != fmt.Sprintf("/assets/images/%d.png", id) {
		t.Errorf("image path = %q", got.ImagePath)
	}
}

func TestSubmitMediaFailureOrphansRow(t *testing.T) {
	dbFile, err := os.CreateTemp("", "mannaz-orphan-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := poststore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	spy := &spyStore{Store: db}
	svc := NewService(spy, failingMedia{}, &fakeFetcher{}, nil)

	sub := textOnly("alice", "2024-03-01", "hello")
	sub.Image = []byte("png-bytes")
	sub.ImageType = "image/png"

	_, err = svc.Submit(context.Background(), sub)
	if !errors.Is(err, apperr.ErrMedia) {
		t.Fatalf("error = %v, want ErrMedia", err)
	}

	// The row exists but stays invisible forever; no rollback.
	if spy.creates != 1 {
		t.Errorf("rows created = %d, want 1", spy.creates)
	}
	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("orphaned row is visible: %+v", items)
	}
}

func TestSubmitSequenceOrdering(t *testing.T) {
	svc, _ := testEnv(t, &fakeFetcher{})

	// Scenario E: two submissions, most recent date listed first.
	if _, err := svc.Submit(context.Background(), textOnly("alice", "2024-03-01", "first")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(context.Background(), textOnly("bob", "2024-03-02", "second")); err != nil {
		t.Fatal(err)
	}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Author != "bob" || items[1].Author != "alice" {
		t.Errorf("order = %s, %s; want bob, alice", items[0].Author, items[1].Author)
	}
}

func TestPublishedCallback(t *testing.T) {
	var published []models.Post
	svcBase, _ := testEnv(t, &fakeFetcher{})
	svc := NewService(svcBase.store, svcBase.media, svcBase.fetcher, func(p models.Post) {
		published = append(published, p)
	})

	// Failed submission must not publish.
	_, _ = svc.Submit(context.Background(), textOnly("alice", "bad-date", "x"))
	if len(published) != 0 {
		t.Fatalf("published after failure: %+v", published)
	}

	id, err := svc.Submit(context.Background(), textOnly("alice", "2024-03-01", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if len(published) != 1 {
		t.Fatalf("published = %d events, want 1", len(published))
	}
	if published[0].ID != id || !published[0].Visible {
		t.Errorf("published post = %+v", published[0])
	}
}

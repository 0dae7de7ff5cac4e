package events

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPosters struct {
	files map[string]*filesystem.File
	err   error
}

func (m *memoryPosters) Save(_ context.Context, file *filesystem.File) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string]*filesystem.File{}
	}
	key := PosterKey(file.OriginalName)
	m.files[key] = file
	return key, nil
}

func publishForm() url.Values {
	return url.Values{
		"event_name":            {"Go Meetup"},
		"event_date":            {"2026-11-20"},
		"event_time":            {"18:30"},
		"event_type":            {"Workshop"},
		"event_capacity":        {"40"},
		"event_location":        {"Hall A"},
		"registration_deadline": {"2026-11-18"},
		"registration_link":     {"https://example.com/go"},
		"event_fee":             {"12.50"},
		"event_description":     {"Hands-on session"},
		"additional_info":       {"Bring a laptop"},
	}
}

func newPoster(t *testing.T, name string, size int) *filesystem.File {
	t.Helper()
	f, err := filesystem.NewFileFromBytes(bytes.Repeat([]byte{0x89}, size), name)
	require.NoError(t, err)
	return f
}

func TestParseForm(t *testing.T) {
	ev, err := ParseForm(publishForm())
	require.NoError(t, err)

	assert.Equal(t, "Go Meetup", ev.Name)
	assert.Equal(t, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), ev.Date)
	assert.Equal(t, "18:30", ev.Time)
	assert.Equal(t, "Workshop", ev.EventType)
	assert.Equal(t, 40, ev.Capacity)
	assert.Equal(t, "Hall A", ev.Location)
	assert.Equal(t, "2026-11-18", ev.RegistrationDeadline)
	assert.Equal(t, "https://example.com/go", ev.RegistrationLink)
	assert.Equal(t, 12.5, ev.Fee)
	assert.Equal(t, "Hands-on session", ev.Description)
	assert.Equal(t, "Bring a laptop", ev.AdditionalInfo)
}

func TestParseForm_InvalidDate(t *testing.T) {
	for _, date := range []string{"", "20-11-2026", "2026-13-01", "tomorrow"} {
		form := publishForm()
		form.Set("event_date", date)
		_, err := ParseForm(form)
		assert.ErrorIs(t, err, ErrInvalidDate, date)
	}
}

func TestParseForm_FeeDefaults(t *testing.T) {
	cases := map[string]float64{
		"":      0,
		"abc":   0,
		"-5":    0,
		"NaN":   0,
		"Inf":   0,
		"0":     0,
		" 7.25": 7.25,
	}
	for input, want := range cases {
		form := publishForm()
		form.Set("event_fee", input)
		ev, err := ParseForm(form)
		require.NoError(t, err)
		assert.Equal(t, want, ev.Fee, "fee %q", input)
	}
}

func TestParseForm_CapacityDefaults(t *testing.T) {
	form := publishForm()
	form.Set("event_capacity", "lots")
	ev, err := ParseForm(form)
	require.NoError(t, err)
	assert.Equal(t, 0, ev.Capacity)
}

func TestPublish_WithoutPoster(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st, &memoryPosters{})
	fixed := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ev, err := ParseForm(publishForm())
	require.NoError(t, err)

	published, err := svc.Publish(ctx, ev, nil)
	require.NoError(t, err)
	require.NotEmpty(t, published.ID)
	assert.Equal(t, utils.DefaultPosterImage, published.PosterImage)
	assert.False(t, published.HasPoster())
	assert.Equal(t, "", published.PosterURL())

	got, err := svc.Get(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, published, got)
	assert.Equal(t, fixed, got.CreatedAt)
	assert.Equal(t, "2026-11-20", got.DateString())
}

func TestPublish_WithPoster(t *testing.T) {
	posters := &memoryPosters{}
	svc := NewService(store.NewMemoryStore(), posters)

	ev, err := ParseForm(publishForm())
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), ev, newPoster(t, "Poster.PNG", 128))
	require.NoError(t, err)
	require.True(t, published.HasPoster())
	assert.True(t, strings.HasPrefix(published.PosterImage, utils.PosterKeyPrefix))
	assert.True(t, strings.HasSuffix(published.PosterImage, ".png"))
	assert.Equal(t, "/"+published.PosterImage, published.PosterURL())
	assert.Contains(t, posters.files, published.PosterImage)
	assert.True(t, ValidPosterKey(published.PosterImage))
}

func TestPublish_RejectsBadPosters(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, &memoryPosters{})
	ev, err := ParseForm(publishForm())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), ev, newPoster(t, "notes.txt", 10))
	require.ErrorIs(t, err, ErrPosterType)

	_, err = svc.Publish(context.Background(), ev, newPoster(t, "huge.jpg", utils.MaxPosterFileSize+1))
	require.ErrorIs(t, err, ErrPosterTooLarge)

	n, err := st.Count(context.Background(), utils.CollectionEvents)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPublish_PosterStorageFailure(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, &memoryPosters{err: errors.New("bucket unavailable")})
	ev, err := ParseForm(publishForm())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), ev, newPoster(t, "poster.jpg", 10))
	require.ErrorContains(t, err, "bucket unavailable")

	n, err := st.Count(context.Background(), utils.CollectionEvents)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemoryStore(), nil)

	for _, name := range []string{"first", "second", "third"} {
		form := publishForm()
		form.Set("event_name", name)
		ev, err := ParseForm(form)
		require.NoError(t, err)
		_, err = svc.Publish(ctx, ev, nil)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, store.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "second", list[1].Name)

	total, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestGet_NotFound(t *testing.T) {
	_, err := NewService(store.NewMemoryStore(), nil).Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestValidPosterKey(t *testing.T) {
	assert.True(t, ValidPosterKey("posters/abc.jpg"))
	assert.False(t, ValidPosterKey("posters/"))
	assert.False(t, ValidPosterKey("posters/../pb_data/data.db"))
	assert.False(t, ValidPosterKey("posters/a/b.jpg"))
	assert.False(t, ValidPosterKey("other/abc.jpg"))
	assert.False(t, ValidPosterKey("posters/abc.exe"))
	assert.False(t, ValidPosterKey(utils.DefaultPosterImage))
}

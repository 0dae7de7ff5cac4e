package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/stretchr/testify/require"
)

func TestExportRegistrations(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := signup.NewService(st, &fakeNotifier{})

	_, err := svc.Register(ctx, signup.Registration{Fullname: "Ann", Email: "ann@example.com", JoinedWhatsapp: true})
	require.NoError(t, err)
	_, err = svc.Register(ctx, signup.Registration{Fullname: "Bo, Jr.", Email: "bo@example.com"})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := exportRegistrations(ctx, st, &buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, registrationCSVHeader, rows[0])
	require.Equal(t, "Bo, Jr.", rows[1][1])
	require.Equal(t, "ann@example.com", rows[2][2])
	require.Equal(t, "true", rows[2][10])
}

type closeRecordingStore struct {
	store.Store
	listErr error
	closed  bool
}

func (s *closeRecordingStore) List(ctx context.Context, collection string, opts store.ListOptions) ([]store.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Store.List(ctx, collection, opts)
}

func (s *closeRecordingStore) Close(context.Context) error {
	s.closed = true
	return nil
}

func TestRunExport_ClosesStore(t *testing.T) {
	st := &closeRecordingStore{Store: store.NewMemoryStore()}

	var buf bytes.Buffer
	n, err := runExport(context.Background(), st, &buf)
	require.NoError(t, err)
	require.Zero(t, n)
	require.True(t, st.closed)
}

func TestRunExport_ClosesStoreOnError(t *testing.T) {
	st := &closeRecordingStore{Store: store.NewMemoryStore(), listErr: errors.New("connection reset")}

	var buf bytes.Buffer
	_, err := runExport(context.Background(), st, &buf)
	require.ErrorContains(t, err, "connection reset")
	require.True(t, st.closed)
}

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/grtshw/event-registration/notify"
	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	sent int
}

func (n *countingNotifier) Send(context.Context, string, string, string, map[string]any) notify.Delivery {
	n.sent++
	return notify.Delivery{Status: notify.Delivered}
}

func TestReadEmails_WithHeader(t *testing.T) {
	emails, err := readEmails(strings.NewReader("name,Email\nAnn, ann@example.com\nBo,\nCy,cy@example.com\n"), "email")
	require.NoError(t, err)
	require.Equal(t, []string{"ann@example.com", "cy@example.com"}, emails)
}

func TestReadEmails_Headerless(t *testing.T) {
	emails, err := readEmails(strings.NewReader("\ufeffann@example.com\nbo@example.com\n"), "email")
	require.NoError(t, err)
	require.Equal(t, []string{"ann@example.com", "bo@example.com"}, emails)
}

func TestReadEmails_Empty(t *testing.T) {
	emails, err := readEmails(strings.NewReader(""), "email")
	require.NoError(t, err)
	require.Empty(t, emails)
}

func TestImportSubscribers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	n := &countingNotifier{}
	svc := signup.NewService(st, n)

	_, err := svc.SubscribeQuietly(ctx, "existing@example.com")
	require.NoError(t, err)

	result := importSubscribers(ctx, svc, []string{"a@example.com", "existing@example.com", "a@example.com", "b@example.com"}, false)
	require.Equal(t, 2, result.Created)
	require.Equal(t, 2, result.Skipped)
	require.Empty(t, result.Errors)
	require.Zero(t, n.sent)

	total, err := st.Count(ctx, utils.CollectionSubscribers)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	result = importSubscribers(ctx, svc, []string{"c@example.com"}, true)
	require.Equal(t, 1, result.Created)
	require.Equal(t, 1, n.sent)
}

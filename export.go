package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
)

var registrationCSVHeader = []string{
	"id", "fullname", "email", "phone", "gender", "profession",
	"institute_name", "linkedin_link", "heard_about_us", "expectations", "joined_whatsapp",
}

// runExport writes the registrations CSV to w and closes st on every path.
func runExport(ctx context.Context, st store.Store, w io.Writer) (n int, err error) {
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if cerr := st.Close(closeCtx); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return exportRegistrations(ctx, st, w)
}

// exportRegistrations writes every registration as CSV, newest first.
func exportRegistrations(ctx context.Context, st store.Store, w io.Writer) (int, error) {
	docs, err := st.List(ctx, utils.CollectionRegistrations, store.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("list registrations: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(registrationCSVHeader); err != nil {
		return 0, err
	}
	for _, doc := range docs {
		r := signup.RegistrationFromDocument(doc)
		row := []string{
			doc.ID(), r.Fullname, r.Email, r.Phone, r.Gender, r.Profession,
			r.InstituteName, r.LinkedinLink, r.HeardAboutUs, r.Expectations,
			strconv.FormatBool(r.JoinedWhatsapp),
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(docs), cw.Error()
}

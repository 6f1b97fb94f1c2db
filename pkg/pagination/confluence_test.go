package pagination_test

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/Sternrassler/confluence-export/internal/testutil"
	"github.com/Sternrassler/confluence-export/pkg/confluence"
	"github.com/Sternrassler/confluence-export/pkg/pagination"
)

func newDriver(t *testing.T, baseURL string) *pagination.Driver[confluence.Page] {
	t.Helper()

	client, err := confluence.New(confluence.Config{
		BaseURL:  baseURL,
		SpaceKey: "DOCS",
		Auth:     "token",
	})
	if err != nil {
		t.Fatalf("confluence.New() error = %v", err)
	}
	return pagination.NewDriver[confluence.Page](client, pagination.DefaultConfig())
}

func TestFetchAll_ConfluenceSpace(t *testing.T) {
	mock := testutil.NewMockConfluence(testutil.GeneratePages(30))
	defer mock.Close()

	pages, err := newDriver(t, mock.URL()).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(pages) != 30 {
		t.Fatalf("len(pages) = %d, want 30", len(pages))
	}
	for i, p := range pages {
		want := testutil.GeneratePages(30)[i]
		if p.ID != want.ID || p.Title != want.Title || p.Body.View.Value != want.HTML {
			t.Errorf("pages[%d] = %+v, want %+v", i, p, want)
		}
	}
	if got := mock.GetStarts(); !reflect.DeepEqual(got, []int{0, 25, 50}) {
		t.Errorf("starts = %v, want [0 25 50]", got)
	}
}

func TestFetchAll_ExactMultipleOfPageSize(t *testing.T) {
	mock := testutil.NewMockConfluence(testutil.GeneratePages(50))
	defer mock.Close()

	pages, err := newDriver(t, mock.URL()).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(pages) != 50 || mock.GetRequestCount() != 3 {
		t.Errorf("pages = %d, requests = %d; want 50, 3", len(pages), mock.GetRequestCount())
	}
}

func TestFetchAll_Unauthorized(t *testing.T) {
	mock := testutil.NewMockConfluence(testutil.GeneratePages(30))
	defer mock.Close()
	mock.SetResponseAt(0, testutil.NewUnauthorizedResponse())

	pages, err := newDriver(t, mock.URL()).FetchAll(context.Background())
	if pages != nil {
		t.Errorf("pages = %v, want nil", pages)
	}

	var reqErr *confluence.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *confluence.RequestError", err)
	}
	if status, ok := reqErr.Status(); !ok || status != http.StatusUnauthorized {
		t.Errorf("Status() = (%d, %v), want (401, true)", status, ok)
	}
	if reqErr.Body != `{"message":"unauthorized"}` {
		t.Errorf("Body = %q", reqErr.Body)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want 1", mock.GetRequestCount())
	}
}

func TestFetchAll_MalformedSecondPage(t *testing.T) {
	mock := testutil.NewMockConfluence(testutil.GeneratePages(30))
	defer mock.Close()
	mock.SetResponseAt(25, testutil.NewMalformedResponse())

	pages, err := newDriver(t, mock.URL()).FetchAll(context.Background())
	if pages != nil {
		t.Errorf("pages = %d items, want nil", len(pages))
	}

	var reqErr *confluence.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *confluence.RequestError", err)
	}
	if status, ok := reqErr.Status(); !ok || status != http.StatusOK {
		t.Errorf("Status() = (%d, %v), want (200, true)", status, ok)
	}
	if reqErr.Body != "not json" || reqErr.Class != confluence.ErrorClassMalformed {
		t.Errorf("RequestError = %+v", reqErr)
	}
}

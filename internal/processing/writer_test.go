package processing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petition_tally/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// fakeSheets backs a real Sheets service with an httptest server so the
// writer path can run end to end.
type fakeSheets struct {
	headers     []string
	headerPuts  []string
	batchBodies []string
	batchStatus int
}

func (f *fakeSheets) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			cells := make([]string, len(f.headers))
			for i, h := range f.headers {
				cells[i] = fmt.Sprintf("%q", h)
			}
			fmt.Fprintf(w, `{"range":"Sheet1!A1:Z1","values":[[%s]]}`, strings.Join(cells, ","))
		case r.Method == http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.headerPuts = append(f.headerPuts, r.URL.Path+" "+string(body))
			fmt.Fprint(w, `{}`)
		case r.Method == http.MethodPost:
			if f.batchStatus != 0 {
				w.WriteHeader(f.batchStatus)
				fmt.Fprint(w, `{"error":{"code":500,"message":"boom"}}`)
				return
			}
			body, _ := io.ReadAll(r.Body)
			f.batchBodies = append(f.batchBodies, string(body))
			fmt.Fprint(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	})
}

func newFakeClient(t *testing.T, fake *fakeSheets) *sheets.Client {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	service, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication())
	require.NoError(t, err)
	return sheets.NewClient(service)
}

func TestWriteSignCountsAppendsMissingHeader(t *testing.T) {
	fake := &fakeSheets{headers: []string{"Title_Eng", "VoteForm - Eng"}}
	client := newFakeClient(t, fake)

	results := []SignResult{
		{Title: "first", Count: intPtr(100)},
		{Title: "second"},
		{Title: "third", Count: intPtr(300)},
	}

	ok := WriteSignCounts(context.Background(), client, "sheet123", results)
	require.True(t, ok)

	require.Len(t, fake.headerPuts, 1)
	assert.Contains(t, fake.headerPuts[0], "C1", "header lands in the next free column")
	assert.Contains(t, fake.headerPuts[0], "VoteTally - Eng")

	require.Len(t, fake.batchBodies, 1)
	assert.Contains(t, fake.batchBodies[0], `"C2"`)
	assert.Contains(t, fake.batchBodies[0], `"C4"`, "nil rows keep their slot")
	assert.NotContains(t, fake.batchBodies[0], `"C3"`)
	assert.Contains(t, fake.batchBodies[0], `"100"`)
	assert.Contains(t, fake.batchBodies[0], `"300"`)
	assert.Contains(t, fake.batchBodies[0], `"RAW"`)
}

func TestWriteSignCountsReusesExistingHeader(t *testing.T) {
	fake := &fakeSheets{headers: []string{"Title_Eng", "votetally - eng", "VoteForm - Eng"}}
	client := newFakeClient(t, fake)

	results := []SignResult{{Title: "first", Count: intPtr(42)}}

	ok := WriteSignCounts(context.Background(), client, "sheet123", results)
	require.True(t, ok)

	assert.Empty(t, fake.headerPuts, "existing header must not be duplicated")
	require.Len(t, fake.batchBodies, 1)
	assert.Contains(t, fake.batchBodies[0], `"B2"`)
	assert.Contains(t, fake.batchBodies[0], `"42"`)
}

func TestWriteSignCountsNothingToWrite(t *testing.T) {
	fake := &fakeSheets{headers: []string{"Title_Eng", "VoteTally - Eng"}}
	client := newFakeClient(t, fake)

	ok := WriteSignCounts(context.Background(), client, "sheet123", []SignResult{{Title: "a"}})
	assert.True(t, ok)
	assert.Empty(t, fake.batchBodies)
}

func TestWriteSignCountsBatchFailure(t *testing.T) {
	fake := &fakeSheets{
		headers:     []string{"Title_Eng", "VoteTally - Eng"},
		batchStatus: http.StatusInternalServerError,
	}
	client := newFakeClient(t, fake)

	ok := WriteSignCounts(context.Background(), client, "sheet123", []SignResult{{Title: "a", Count: intPtr(5)}})
	assert.False(t, ok, "write failures are reported, not retried")
}

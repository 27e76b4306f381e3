package archive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES records requests and answers like a single Elasticsearch node
type fakeES struct {
	mu       sync.Mutex
	indices  map[string]bool
	docs     map[string][]byte
	requests []string
	failDocs bool
}

func newFakeES() *fakeES {
	return &fakeES{indices: map[string]bool{}, docs: map[string][]byte{}}
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.indices[parts[0]] {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && len(parts) == 1:
		f.indices[parts[0]] = true
		io.WriteString(w, `{"acknowledged":true,"index":"`+parts[0]+`"}`)
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "_doc":
		if f.failDocs {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"boom"}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.docs[parts[0]+"/"+parts[2]] = body
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{}`)
	}
}

func (f *fakeES) count(req string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == req {
			n++
		}
	}
	return n
}

func newTestArchive(t *testing.T, es *fakeES) *ElasticsearchArchive {
	server := httptest.NewServer(es)
	t.Cleanup(server.Close)

	a, err := NewElasticsearchArchive(Config{URL: server.URL}, logging.Discard())
	require.NoError(t, err)
	return a
}

func testResult() (*entities.Battle, *entities.BattleResult) {
	completed := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	b := &entities.Battle{ID: 7, Category: "Rock", Tier: 5, Status: entities.BattleStatusCompleted, CreatedAt: completed.Add(-48 * time.Hour)}
	winner := &entities.Entrant{ID: 11, UserID: "artist-1", Username: "beatsmith", DisplayNumber: 1, SubmissionRef: "https://tracks.example/1"}
	other := &entities.Entrant{ID: 12, UserID: "artist-2", DisplayNumber: 2, SubmissionRef: "https://tracks.example/2"}
	r := &entities.BattleResult{
		BattleID:        7,
		Category:        "Rock",
		Tier:            5,
		HasWinner:       true,
		WinnerEntrantID: 11,
		WinnerUserID:    "artist-1",
		WinnerVotes:     2,
		PaidEntrants:    2,
		TotalPool:       decimal.NewFromInt(10),
		WinnerPayout:    decimal.NewFromInt(7),
		PlatformFee:     decimal.NewFromInt(3),
		Standings:       []entities.Standing{{Entrant: winner, Votes: 2}, {Entrant: other, Votes: 1}},
		CompletedAt:     completed,
	}
	return b, r
}

func TestArchiveResultCreatesMonthlyIndex(t *testing.T) {
	es := newFakeES()
	a := newTestArchive(t, es)
	b, r := testResult()

	require.NoError(t, a.ArchiveResult(context.Background(), b, r))

	assert.Equal(t, "trackbattle_battles_2024-05", a.IndexFor(r))
	assert.True(t, es.indices["trackbattle_battles_2024-05"])

	raw, ok := es.docs["trackbattle_battles_2024-05/7"]
	require.True(t, ok)

	var doc ESBattleResult
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, int64(7), doc.BattleID)
	assert.Equal(t, "artist-1", doc.WinnerUserID)
	assert.True(t, doc.WinnerPayout.Equal(decimal.NewFromInt(7)))
	require.Len(t, doc.Standings, 2)
	assert.True(t, doc.Standings[0].Winner)
	assert.False(t, doc.Standings[1].Winner)
}

func TestArchiveResultChecksIndexOnce(t *testing.T) {
	es := newFakeES()
	a := newTestArchive(t, es)
	b, r := testResult()

	require.NoError(t, a.ArchiveResult(context.Background(), b, r))
	require.NoError(t, a.ArchiveResult(context.Background(), b, r))

	assert.Equal(t, 1, es.count("HEAD /trackbattle_battles_2024-05"))
	assert.Equal(t, 1, es.count("PUT /trackbattle_battles_2024-05"))
	assert.Equal(t, 2, es.count("PUT /trackbattle_battles_2024-05/_doc/7"))
}

func TestArchiveResultReportsIndexError(t *testing.T) {
	es := newFakeES()
	es.failDocs = true
	a := newTestArchive(t, es)
	b, r := testResult()

	err := a.ArchiveResult(context.Background(), b, r)
	assert.Error(t, err)
}

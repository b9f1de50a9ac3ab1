package geckoterminal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/tradescan/internal/adapters/geckoterminal"
	"github.com/alejandrodnm/tradescan/internal/adapters/governor"
	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	giff = "pulsechain_0xgiff"
	wpls = "pulsechain_0xwpls"
)

var windowEnd = time.Date(2024, 7, 1, 12, 0, 0, 123456000, time.UTC)

type chainMap map[string]string

func (m chainMap) ChainIdentifier(name string) (string, bool) {
	id, ok := m[name]
	return id, ok
}

func newTestClient(t *testing.T, srv *httptest.Server) *geckoterminal.Client {
	t.Helper()
	gov := governor.New(srv.Client(), rate.NewLimiter(rate.Inf, 0), governor.WithMaxAttempts(1))
	c, err := geckoterminal.NewClient(srv.URL+"/api/p1", "test-agent", gov, chainMap{"PulseChain": "pulsechain"})
	require.NoError(t, err)
	return c
}

func query(input, output string, maxTrades int) domain.TradeQuery {
	return domain.TradeQuery{
		Pool: domain.Pool{
			ID:       "145591230",
			Address:  "0xpool",
			Network:  "PulseChain",
			Token1ID: giff,
			Token2ID: wpls,
		},
		InputIDs:  domain.NewIDSet(input),
		OutputIDs: domain.NewIDSet(output),
		MaxTrades: maxTrades,
		WindowEnd: windowEnd,
		Lookback:  time.Minute,
	}
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../../testdata/fixtures/" + name)
	require.NoError(t, err)
	return data
}

func TestFetchTrades_PaginatesAndResolvesDirection(t *testing.T) {
	page1 := readFixture(t, "swaps_page1.json")
	page2 := readFixture(t, "swaps_page2.json")

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/p1/pulsechain/pools/0xpool/swaps", r.URL.Path)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		switch hits.Add(1) {
		case 1:
			assert.Equal(t, "from_token,to_token", q.Get("include"))
			assert.Equal(t, "0", q.Get("inverted"))
			assert.Equal(t, "145591230", q.Get("pair_id"))
			assert.Equal(t,
				"2024-07-01T11:59:00.123456+00:00_2024-07-01T12:00:00.123456+00:00",
				q.Get("page[after]"))
			w.Write(page1)
		case 2:
			// la segunda página usa solo el link, sin los params originales
			assert.Equal(t, "cursor-2", q.Get("page[after]"))
			assert.Empty(t, q.Get("pair_id"))
			assert.Empty(t, q.Get("include"))
			w.Write(page2)
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 100))
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.EqualValues(t, 2, hits.Load())

	for _, tr := range trades {
		assert.Equal(t, giff, tr.InputToken)
		assert.Equal(t, wpls, tr.OutputToken)
		assert.Equal(t, "0xpool", tr.PoolAddress)
		assert.Equal(t, "PulseChain", tr.Chain)
		assert.Nil(t, tr.TraderBalance)
	}

	// swap-1: from=GIFF, ya está en la dirección pedida
	assert.Equal(t, "1500.25", trades[0].InputAmount.String())
	assert.Equal(t, "32.1", trades[0].OutputAmount.String())
	assert.Equal(t, "0.0021", trades[0].PriceUSD.String())

	// swap-2: from=WPLS, se invierte
	assert.Equal(t, "0xtx2", trades[1].TxHash)
	assert.Equal(t, "0xtrader_b", trades[1].TraderAddress)
	assert.Equal(t, "470", trades[1].InputAmount.String())
	assert.Equal(t, "10", trades[1].OutputAmount.String())
	assert.Equal(t, "0.002", trades[1].PriceUSD.String())
}

func TestFetchTrades_OppositeRequestedDirection(t *testing.T) {
	page2 := readFixture(t, "swaps_page2.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(page2)
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(wpls, giff, 100))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, wpls, trades[0].InputToken)
	assert.Equal(t, giff, trades[0].OutputToken)
	assert.Equal(t, "17", trades[0].InputAmount.String())
	assert.Equal(t, "0.097", trades[0].PriceUSD.String())
}

func TestFetchTrades_UnknownChainReturnsEmpty(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	q := query(giff, wpls, 100)
	q.Pool.Network = "Atlantis"

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Zero(t, hits.Load())
}

func TestFetchTrades_StopsAtMaxTrades(t *testing.T) {
	page1 := readFixture(t, "swaps_page1.json")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(page1)
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 1))
	require.NoError(t, err)
	assert.Len(t, trades, 2, "la página completa se acumula, el corte exacto es del pipeline")
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchTrades_EmptyPageStops(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data": [], "links": {"next": "/api/p1/pulsechain/pools/0xpool/swaps?page=9"}}`))
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 100))
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchTrades_ErrorMidCrawlReturnsPartial(t *testing.T) {
	page1 := readFixture(t, "swaps_page1.json")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Write(page1)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 100))
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestFetchTrades_MalformedPageReturnsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [ {"attributes": `))
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 100))
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestDateRangeCursor(t *testing.T) {
	start := time.Date(2024, 7, 1, 11, 59, 0, 5000, time.UTC)
	end := start.Add(time.Minute)
	assert.Equal(t,
		"2024-07-01T11:59:00.000005+00:00_2024-07-01T12:00:00.000005+00:00",
		geckoterminal.DateRangeCursor(start, end))

	// otras zonas se convierten a UTC
	loc := time.FixedZone("X", 2*3600)
	assert.Equal(t,
		"2024-07-01T11:59:00.000005+00:00_2024-07-01T11:59:00.000005+00:00",
		geckoterminal.DateRangeCursor(start.In(loc), start))
}

const swapWithoutTokens = `{
  "id": "swap-bad",
  "type": "swap",
  "attributes": {
    "timestamp": "2024-07-01T11:59:50.000000Z",
    "tx_hash": "0xtxbad",
    "tx_from_address": "0xtrader_c",
    "from_token_amount": "1",
    "to_token_amount": "2",
    "price_from_in_usd": "0.1",
    "price_to_in_usd": "0.05"
  }
}`

const validSwap = `{
  "id": "swap-ok",
  "type": "swap",
  "attributes": {
    "timestamp": "2024-07-01T11:59:55.000000Z",
    "tx_hash": "0xtxok",
    "tx_from_address": "0xtrader_d",
    "from_token_amount": "5",
    "to_token_amount": "6",
    "price_from_in_usd": "0.2",
    "price_to_in_usd": "0.1"
  },
  "relationships": {
    "from_token": {"data": {"id": "pulsechain_0xgiff", "type": "token"}},
    "to_token": {"data": {"id": "pulsechain_0xwpls", "type": "token"}}
  }
}`

func TestFetchTrades_MissingRelationshipsStopsCrawl(t *testing.T) {
	page2 := readFixture(t, "swaps_page2.json")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Write([]byte(`{"data": [` + swapWithoutTokens + `],
  "links": {"next": "/api/p1/pulsechain/pools/0xpool/swaps?page%5Bafter%5D=cursor-2"}}`))
			return
		}
		w.Write(page2)
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 100))
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchTrades_MissingRelationshipsKeepsEarlierSwaps(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data": [` + validSwap + `, ` + swapWithoutTokens + `, ` + validSwap + `],
  "links": {"next": "/api/p1/pulsechain/pools/0xpool/swaps?page%5Bafter%5D=cursor-2"}}`))
	}))
	defer srv.Close()

	trades, err := newTestClient(t, srv).FetchTrades(context.Background(), query(giff, wpls, 100))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "0xtxok", trades[0].TxHash)
	assert.EqualValues(t, 1, hits.Load())
}

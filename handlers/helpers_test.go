// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/ballots"
	"github.com/danielhkuo/ballotbox/grants"
	"github.com/danielhkuo/ballotbox/lifecycle"
	"github.com/danielhkuo/ballotbox/marketplace"
	"github.com/danielhkuo/ballotbox/orgs"
	"github.com/danielhkuo/ballotbox/sharelink"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/testutil"
	"github.com/danielhkuo/ballotbox/voting"
)

// testEnv wires every handler against one in-memory database
type testEnv struct {
	db      *sql.DB
	ballots *BallotHandler
	voting  *VotingHandler
	results *ResultsHandler
	share   *ShareLinkHandler
	grants  *GrantHandler
	market  *MarketplaceHandler
	orgs    *OrgHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	st := store.New(db)
	links := sharelink.NewService(st, nil)
	resolver := access.NewResolver(st, links, nil)
	aggregator := voting.NewAggregator(st, nil)

	return &testEnv{
		db:      db,
		ballots: NewBallotHandler(ballots.NewService(st, resolver, nil), lifecycle.NewManager(st, nil), resolver),
		voting:  NewVotingHandler(aggregator, resolver),
		results: NewResultsHandler(st, aggregator, resolver),
		share:   NewShareLinkHandler(links, resolver),
		grants:  NewGrantHandler(grants.NewService(st, resolver, nil)),
		market:  NewMarketplaceHandler(marketplace.NewFilter(st, nil)),
		orgs:    NewOrgHandler(orgs.NewService(st, nil)),
	}
}

// serve runs h on req with the given path parameters, given as name/value pairs
func serve(h http.HandlerFunc, req *http.Request, params ...string) *httptest.ResponseRecorder {
	for i := 0; i+1 < len(params); i += 2 {
		req.SetPathValue(params[i], params[i+1])
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"commander-league/internal/config"
	"commander-league/internal/season"
	"commander-league/internal/service"
	"commander-league/internal/stats"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	ServiceName      = "league.v1.LeagueService"
	ServicePath      = "/" + ServiceName + "/"
	AdminTokenHeader = "X-Admin-Token"
)

// adminProcedures change league state and sit behind the admin token.
var adminProcedures = map[string]struct{}{
	ServicePath + "AddDeck":       {},
	ServicePath + "EditDeck":      {},
	ServicePath + "ToggleDeck":    {},
	ServicePath + "RemoveDeck":    {},
	ServicePath + "SaveMatch":     {},
	ServicePath + "RemoveMatch":   {},
	ServicePath + "BeginEdit":     {},
	ServicePath + "CancelEdit":    {},
	ServicePath + "PreviewImport": {},
	ServicePath + "CommitImport":  {},
}

type LeagueServer struct {
	svc    *service.LeagueService
	cfg    *config.Config
	logger zerolog.Logger
}

func NewLeagueServer(svc *service.LeagueService, cfg *config.Config, logger zerolog.Logger) *LeagueServer {
	return &LeagueServer{svc: svc, cfg: cfg, logger: logger}
}

// Handler mounts every procedure of the league service plus the export and
// chart endpoints.
func (s *LeagueServer) Handler() http.Handler {
	opts := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(s.adminInterceptor()),
	}

	mux := http.NewServeMux()
	mux.Handle(ServicePath+"ListDecks", connect.NewUnaryHandler(ServicePath+"ListDecks", s.ListDecks, opts...))
	mux.Handle(ServicePath+"AddDeck", connect.NewUnaryHandler(ServicePath+"AddDeck", s.AddDeck, opts...))
	mux.Handle(ServicePath+"EditDeck", connect.NewUnaryHandler(ServicePath+"EditDeck", s.EditDeck, opts...))
	mux.Handle(ServicePath+"ToggleDeck", connect.NewUnaryHandler(ServicePath+"ToggleDeck", s.ToggleDeck, opts...))
	mux.Handle(ServicePath+"RemoveDeck", connect.NewUnaryHandler(ServicePath+"RemoveDeck", s.RemoveDeck, opts...))
	mux.Handle(ServicePath+"ListMatches", connect.NewUnaryHandler(ServicePath+"ListMatches", s.ListMatches, opts...))
	mux.Handle(ServicePath+"SaveMatch", connect.NewUnaryHandler(ServicePath+"SaveMatch", s.SaveMatch, opts...))
	mux.Handle(ServicePath+"RemoveMatch", connect.NewUnaryHandler(ServicePath+"RemoveMatch", s.RemoveMatch, opts...))
	mux.Handle(ServicePath+"BeginEdit", connect.NewUnaryHandler(ServicePath+"BeginEdit", s.BeginEdit, opts...))
	mux.Handle(ServicePath+"CancelEdit", connect.NewUnaryHandler(ServicePath+"CancelEdit", s.CancelEdit, opts...))
	mux.Handle(ServicePath+"PreviewImport", connect.NewUnaryHandler(ServicePath+"PreviewImport", s.PreviewImport, opts...))
	mux.Handle(ServicePath+"CommitImport", connect.NewUnaryHandler(ServicePath+"CommitImport", s.CommitImport, opts...))
	mux.Handle(ServicePath+"GetStats", connect.NewUnaryHandler(ServicePath+"GetStats", s.GetStats, opts...))
	mux.Handle(ServicePath+"GetPlayerDecks", connect.NewUnaryHandler(ServicePath+"GetPlayerDecks", s.GetPlayerDecks, opts...))
	mux.Handle(ServicePath+"ResolveDeckInfo", connect.NewUnaryHandler(ServicePath+"ResolveDeckInfo", s.ResolveDeckInfo, opts...))
	mux.Handle(ServicePath+"KnownPlayers", connect.NewUnaryHandler(ServicePath+"KnownPlayers", s.KnownPlayers, opts...))

	mux.HandleFunc("GET /export/decks", s.ExportDecks)
	mux.HandleFunc("GET /export/matches/{year}", s.ExportSeason)
	mux.HandleFunc("GET /charts/wins/{year}", s.WinsChart)
	return mux
}

// adminInterceptor rejects state-changing calls without the shared admin
// token. An empty configured token disables the check.
func (s *LeagueServer) adminInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if _, ok := adminProcedures[req.Spec().Procedure]; ok && s.cfg.AdminToken != "" {
				got := req.Header().Get(AdminTokenHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.AdminToken)) != 1 {
					zerolog.Ctx(ctx).Warn().Str("procedure", req.Spec().Procedure).Msg("admin token rejected")
					return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("admin token required"))
				}
			}
			return next(ctx, req)
		}
	}
}

func (s *LeagueServer) ListDecks(ctx context.Context, req *connect.Request[ListDecksRequest]) (*connect.Response[ListDecksResponse], error) {
	return connect.NewResponse(&ListDecksResponse{Decks: s.svc.ListDecks(req.Msg.ActiveOnly)}), nil
}

func (s *LeagueServer) AddDeck(ctx context.Context, req *connect.Request[AddDeckRequest]) (*connect.Response[DeckResponse], error) {
	deck, err := s.svc.AddDeck(req.Msg.Deck)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeckResponse{Deck: deck}), nil
}

func (s *LeagueServer) EditDeck(ctx context.Context, req *connect.Request[EditDeckRequest]) (*connect.Response[DeckResponse], error) {
	deck, err := s.svc.EditDeck(req.Msg.ID, req.Msg.Deck)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeckResponse{Deck: deck}), nil
}

func (s *LeagueServer) ToggleDeck(ctx context.Context, req *connect.Request[DeckIDRequest]) (*connect.Response[DeckResponse], error) {
	deck, err := s.svc.ToggleDeck(req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeckResponse{Deck: deck}), nil
}

func (s *LeagueServer) RemoveDeck(ctx context.Context, req *connect.Request[DeckIDRequest]) (*connect.Response[Empty], error) {
	if err := s.svc.RemoveDeck(req.Msg.ID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) ListMatches(ctx context.Context, req *connect.Request[ListMatchesRequest]) (*connect.Response[ListMatchesResponse], error) {
	matches, err := s.svc.ListMatches(req.Msg.Year)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListMatchesResponse{Season: matches}), nil
}

func (s *LeagueServer) SaveMatch(ctx context.Context, req *connect.Request[SaveMatchRequest]) (*connect.Response[MatchResponse], error) {
	index := season.NoIndex
	if req.Msg.Index != nil {
		index = *req.Msg.Index
	}
	match, err := s.svc.SaveMatch(req.Msg.Year, index, req.Msg.Match, req.Msg.PodSize)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&MatchResponse{Match: match}), nil
}

func (s *LeagueServer) RemoveMatch(ctx context.Context, req *connect.Request[MatchIndexRequest]) (*connect.Response[Empty], error) {
	if err := s.svc.RemoveMatch(req.Msg.Year, req.Msg.Index); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) BeginEdit(ctx context.Context, req *connect.Request[MatchIndexRequest]) (*connect.Response[MatchResponse], error) {
	match, err := s.svc.BeginEdit(req.Msg.Year, req.Msg.Index)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&MatchResponse{Match: match}), nil
}

func (s *LeagueServer) CancelEdit(ctx context.Context, req *connect.Request[ListMatchesRequest]) (*connect.Response[Empty], error) {
	if err := s.svc.CancelEdit(req.Msg.Year); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) PreviewImport(ctx context.Context, req *connect.Request[PreviewImportRequest]) (*connect.Response[PreviewImportResponse], error) {
	preview, err := s.svc.PreviewImport(req.Msg.Text)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PreviewImportResponse{Preview: preview}), nil
}

func (s *LeagueServer) CommitImport(ctx context.Context, req *connect.Request[CommitImportRequest]) (*connect.Response[CommitImportResponse], error) {
	result, err := s.svc.CommitImport(req.Msg.PreviewID, req.Msg.Text)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CommitImportResponse{Result: result, Total: result.Total()}), nil
}

func (s *LeagueServer) GetStats(ctx context.Context, req *connect.Request[GetStatsRequest]) (*connect.Response[GetStatsResponse], error) {
	tab := req.Msg.Tab
	if tab == "" {
		tab = service.OverallTab
	}
	view, err := s.svc.Stats(tab, req.Msg.Sort, req.Msg.IncludeInactive)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &GetStatsResponse{
		Tabs:    s.svc.Tabs(),
		Title:   view.Title,
		Players: make([]PlayerView, 0, len(view.Players)),
		Decks:   make([]DeckView, 0, len(view.Decks)),
	}
	for _, p := range view.Players {
		resp.Players = append(resp.Players, PlayerView{PlayerRow: p, WinRate: stats.FormatPercent(stats.WinRate(p.Wins, p.MatchesPlayed))})
	}
	for _, d := range view.Decks {
		resp.Decks = append(resp.Decks, DeckView{DeckRow: d, WinRate: stats.FormatPercent(stats.WinRate(d.Wins, d.MatchesPlayed))})
	}
	return connect.NewResponse(resp), nil
}

func (s *LeagueServer) GetPlayerDecks(ctx context.Context, req *connect.Request[GetPlayerDecksRequest]) (*connect.Response[GetPlayerDecksResponse], error) {
	rows, err := s.svc.PlayerDecks(req.Msg.Tab, req.Msg.Player)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetPlayerDecksResponse{Decks: rows}), nil
}

func (s *LeagueServer) ResolveDeckInfo(ctx context.Context, req *connect.Request[DeckIDRequest]) (*connect.Response[ResolveDeckInfoResponse], error) {
	info, err := s.svc.DeckInfo(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ResolveDeckInfoResponse{Info: info}), nil
}

func (s *LeagueServer) KnownPlayers(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[KnownPlayersResponse], error) {
	return connect.NewResponse(&KnownPlayersResponse{Players: s.svc.KnownPlayers()}), nil
}

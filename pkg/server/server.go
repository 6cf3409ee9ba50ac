package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/strgrp/internal/logger"
	"github.com/bastiangx/strgrp/pkg/strgrp"
)

// Engine is the engine type served over IPC. Payloads are kept as raw
// msgpack so clients get back exactly what they sent.
type Engine = strgrp.Engine[msgpack.RawMessage]

// Options bounds what clients may ask for.
type Options struct {
	// MaxKeyLen rejects longer keys with a 400. Zero means unlimited.
	MaxKeyLen int
	// RankedLimit is the default and maximum length of a ranked reply.
	RankedLimit int
}

// Server handles msgpack IPC for one engine.
type Server struct {
	engine *Engine
	dec    *msgpack.Decoder
	w      *bufio.Writer
	enc    *msgpack.Encoder
	opts   Options
	log    *log.Logger

	requests int
}

// NewServer creates a server reading requests from r and writing replies to w.
func NewServer(engine *Engine, r io.Reader, w io.Writer, opts Options) *Server {
	if opts.RankedLimit < 1 {
		opts.RankedLimit = 16
	}
	bw := bufio.NewWriter(w)
	return &Server{
		engine: engine,
		dec:    msgpack.NewDecoder(bufio.NewReader(r)),
		w:      bw,
		enc:    msgpack.NewEncoder(bw),
		opts:   opts,
		log:    logger.New("server"),
	}
}

// Start announces readiness and serves requests until the input ends. A
// request that cannot be decoded is answered with a 400 and ends the
// session, since the stream position is then unknown.
func (s *Server) Start() error {
	s.log.Debug("Starting server")
	if err := s.send(Response{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed", "requests", s.requests)
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			_ = s.sendError("", "malformed request", CodeBadRequest)
			return err
		}
		s.requests++
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

// Requests returns the number of requests decoded so far.
func (s *Server) Requests() int {
	return s.requests
}

func (s *Server) handleRequest(req Request) error {
	start := time.Now()

	if s.opts.MaxKeyLen > 0 && utf8.RuneCountInString(req.Key) > s.opts.MaxKeyLen {
		return s.sendError(req.ID, fmt.Sprintf("key exceeds maximum length of %d characters", s.opts.MaxKeyLen), CodeBadRequest)
	}

	var (
		resp Response
		err  error
	)
	switch req.Op {
	case OpAdd:
		resp, err = s.handleAdd(req)
	case OpFind:
		resp = s.handleFind(req)
	case OpExact:
		resp = s.handleExact(req)
	case OpRanked:
		resp = s.handleRanked(req)
	case OpGroups:
		resp = s.handleGroups()
	case OpItems:
		resp, err = s.handleItems(req)
	case OpStats:
		resp = Response{Stats: s.engine.Stats()}
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown op: %q", req.Op), CodeBadRequest)
	}
	if err != nil {
		s.log.Debug("Request failed", "id", req.ID, "op", req.Op, "err", err)
		return s.sendError(req.ID, err.Error(), errorCode(err))
	}

	resp.ID = req.ID
	resp.TimeTaken = time.Since(start).Microseconds()
	s.log.Debugf("Took [ %v ] for %s %q", time.Since(start), req.Op, req.Key)
	return s.send(resp)
}

var (
	errNoGroup    = errors.New("no such group")
	errNeedsGroup = errors.New("missing 'g' parameter")
)

// errorCode maps a handler error to its wire code. Errors the client caused
// are 400, exhausted capacity is 507 and anything unexpected is 500.
func errorCode(err error) int {
	switch {
	case errors.Is(err, strgrp.ErrCapacity):
		return CodeInsufficient
	case errors.Is(err, errNoGroup),
		errors.Is(err, errNeedsGroup),
		errors.Is(err, strgrp.ErrKeyTooLong),
		errors.Is(err, strgrp.ErrForeignGroup):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

func (s *Server) handleAdd(req Request) (Response, error) {
	payload := req.Payload
	if len(payload) == 0 {
		payload = nil
	}

	var (
		g       *strgrp.Group[msgpack.RawMessage]
		outcome strgrp.Outcome
		err     error
	)
	switch {
	case req.Group != nil:
		target, ok := s.engine.Group(*req.Group)
		if !ok {
			return Response{}, fmt.Errorf("%w: %d", errNoGroup, *req.Group)
		}
		g, outcome, err = target, strgrp.OutcomeJoined, s.engine.AddTo(target, req.Key, payload)
	case req.New:
		g, err = s.engine.NewGroup(req.Key, payload)
		outcome = strgrp.OutcomeCreated
	default:
		_, cached := s.engine.ExactMatch(req.Key)
		before := s.engine.Len()
		g, err = s.engine.Add(req.Key, payload)
		switch {
		case cached:
			outcome = strgrp.OutcomeCacheHit
		case s.engine.Len() > before:
			outcome = strgrp.OutcomeCreated
		default:
			outcome = strgrp.OutcomeJoined
		}
	}
	if err != nil {
		return Response{}, err
	}
	return Response{Found: true, Outcome: outcome.String(), Group: groupInfo(g)}, nil
}

func (s *Server) handleFind(req Request) Response {
	g, ok := s.engine.FindBest(req.Key)
	if !ok {
		return Response{}
	}
	return Response{Found: true, Group: groupInfo(g)}
}

func (s *Server) handleExact(req Request) Response {
	g, ok := s.engine.ExactMatch(req.Key)
	if !ok {
		return Response{}
	}
	return Response{Found: true, Group: groupInfo(g)}
}

func (s *Server) handleRanked(req Request) Response {
	limit := req.Limit
	if limit < 1 || limit > s.opts.RankedLimit {
		limit = s.opts.RankedLimit
	}

	r := s.engine.FindRanked(req.Key)
	out := make([]RankedGroup, 0, min(limit, r.Len()))
	for len(out) < limit {
		g, score, ok := r.Next()
		if !ok {
			break
		}
		out = append(out, RankedGroup{
			Index:      g.Index(),
			Key:        g.Key(),
			Score:      score,
			Acceptable: score >= 0,
		})
	}
	return Response{Found: len(out) > 0 && out[0].Acceptable, Ranked: out, Count: len(out)}
}

func (s *Server) handleGroups() Response {
	var out []GroupInfo
	for g := range s.engine.Groups().All() {
		out = append(out, *groupInfo(g))
	}
	return Response{Groups: out, Count: len(out)}
}

func (s *Server) handleItems(req Request) (Response, error) {
	if req.Group == nil {
		return Response{}, errNeedsGroup
	}
	g, ok := s.engine.Group(*req.Group)
	if !ok {
		return Response{}, fmt.Errorf("%w: %d", errNoGroup, *req.Group)
	}

	items := g.Items()
	out := make([]ItemInfo, len(items))
	for i, it := range items {
		out[i] = ItemInfo{Key: it.Key(), Payload: it.Payload()}
	}
	return Response{Found: true, Group: groupInfo(g), Items: out, Count: len(out)}, nil
}

func groupInfo(g *strgrp.Group[msgpack.RawMessage]) *GroupInfo {
	return &GroupInfo{
		Index:     g.Index(),
		Key:       g.Key(),
		Size:      g.Size(),
		Threshold: g.Threshold(),
	}
}

// send encodes one reply and flushes it so clients see it immediately.
func (s *Server) send(resp any) error {
	if err := s.enc.Encode(resp); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return s.w.Flush()
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

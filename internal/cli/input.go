// Package cli reads strings line by line and groups them, either automatically
// or by asking the user to confirm each ambiguous match.
package cli

import (
	"bufio"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/strgrp/internal/utils"
	"github.com/bastiangx/strgrp/pkg/strgrp"
)

// Options controls an InputHandler.
type Options struct {
	// RankedLimit caps the candidates offered per prompt.
	RankedLimit int
	// Interactive asks the user to pick among acceptable groups.
	Interactive bool
	// Normalize is applied to every line before grouping.
	Normalize utils.KeyNormalization
}

// InputHandler feeds lines from a reader into an engine. The payload of
// each item is its 1-based sequence number among the non-empty lines.
type InputHandler struct {
	engine *strgrp.Engine[int]
	in     *bufio.Reader
	out    io.Writer
	opts   Options
	seq    int
}

// NewInputHandler creates a handler. Prompts are written to out.
func NewInputHandler(engine *strgrp.Engine[int], in io.Reader, out io.Writer, opts Options) *InputHandler {
	if opts.RankedLimit < 1 {
		opts.RankedLimit = 5
	}
	return &InputHandler{
		engine: engine,
		in:     bufio.NewReader(in),
		out:    out,
		opts:   opts,
	}
}

// Start consumes the input until EOF. Lines whose key the engine refuses as
// too long are skipped with a warning; other errors stop the loop.
func (h *InputHandler) Start() error {
	if h.opts.Interactive {
		h.printf("strgrp: one string per line, Ctrl+D to finish\n")
	}
	for {
		line, err := h.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		key := line
		if h.opts.Normalize.Enabled() {
			key = utils.NormalizeKey(key, h.opts.Normalize)
		}
		if key == "" {
			continue
		}
		h.seq++

		if err := h.handleInput(key); err != nil {
			if errors.Is(err, strgrp.ErrKeyTooLong) {
				log.Warnf("Skipping line %d: %v", h.seq, err)
				continue
			}
			return err
		}
	}
}

// Processed returns the number of strings handed to the engine so far.
func (h *InputHandler) Processed() int {
	return h.seq
}

func (h *InputHandler) handleInput(key string) error {
	start := time.Now()

	var (
		g   *strgrp.Group[int]
		err error
	)
	if h.opts.Interactive {
		g, err = h.resolve(key)
	} else {
		g, err = h.engine.Add(key, h.seq)
	}
	if err != nil {
		return err
	}

	log.Debugf("Took %v for %q -> group %d", time.Since(start), key, g.Index())
	return nil
}

// resolve places key without scoring when it was seen before, creates a group
// when nothing is acceptable, and otherwise asks.
func (h *InputHandler) resolve(key string) (*strgrp.Group[int], error) {
	if g, ok := h.engine.ExactMatch(key); ok {
		return g, h.engine.AddTo(g, key, h.seq)
	}

	candidates := h.candidates(key)
	if len(candidates) == 0 {
		return h.engine.NewGroup(key, h.seq)
	}

	g, err := h.requestMatch(key, candidates)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return h.engine.NewGroup(key, h.seq)
	}
	return g, h.engine.AddTo(g, key, h.seq)
}

type candidate struct {
	group *strgrp.Group[int]
	score float64
}

// candidates returns the acceptable groups for key, best first.
func (h *InputHandler) candidates(key string) []candidate {
	r := h.engine.FindRanked(key)
	var out []candidate
	for len(out) < h.opts.RankedLimit {
		g, s, ok := r.Next()
		if !ok || s < 0 {
			break
		}
		out = append(out, candidate{group: g, score: s})
	}
	return out
}

// readLine returns one line without its terminator. A final line lacking a
// newline is still returned; io.EOF follows it.
func (h *InputHandler) readLine() (string, error) {
	line, err := h.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return utils.TrimLineEnding(line), nil
		}
		return "", err
	}
	return utils.TrimLineEnding(line), nil
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bastiangx/strgrp/pkg/strgrp"
)

var (
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	scoreStyle = lipgloss.NewStyle().Faint(true)
)

// requestMatch lists the candidates and reads a selection. An empty answer
// picks the first candidate and "n" picks none.
func (h *InputHandler) requestMatch(key string, candidates []candidate) (*strgrp.Group[int], error) {
	h.printf("Which group best matches the following?\n\t%s\n\n", keyStyle.Render(key))
	for i, c := range candidates {
		h.printf("[%d]\t%s %s\n", i, keyStyle.Render(c.group.Key()),
			scoreStyle.Render(fmt.Sprintf("(+%.3f, %d items)", c.score, c.group.Size())))
	}
	h.printf("[n]\tNone of the above\n\n")

	for {
		h.printf("Select [0]: ")
		answer, err := h.readLine()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("reading selection: %w", err)
		}

		answer = strings.TrimSpace(answer)
		switch answer {
		case "":
			return candidates[0].group, nil
		case "n", "N":
			return nil, nil
		}

		index, err := strconv.Atoi(answer)
		if err != nil {
			h.printf("\nNot a number: '%s'\n", answer)
			continue
		}
		if index < 0 || index >= len(candidates) {
			h.printf("\nInvalid value: %d\n", index)
			continue
		}
		return candidates[index].group, nil
	}
}

func (h *InputHandler) printf(format string, args ...any) {
	fmt.Fprintf(h.out, format, args...)
}

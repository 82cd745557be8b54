// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
	"github.com/scetiner/zustand-playground-sub000/internal/lesson"
	"github.com/scetiner/zustand-playground-sub000/internal/playground"
)

// replState holds everything the line-oriented mode needs between
// commands: the snippet buffer being composed, the live session, and
// which lesson (if any) is in progress.
type replState struct {
	session  *session
	catalog  *lesson.Catalog
	progress *lesson.Progress

	buffer        []string
	currentLesson string
	hintIndex     int
}

func startREPL(engine *playground.Engine, catalog *lesson.Catalog, progress *lesson.Progress, historyPath, lessonID string) {
	fmt.Println("zplay - zustand playground")
	fmt.Println("Type snippet lines directly; an empty line runs the buffer.")
	fmt.Println("Type ':help' for commands or ':quit' to exit")

	state := &replState{
		session:  &session{engine: engine},
		catalog:  catalog,
		progress: progress,
	}

	if lessonID != "" {
		if err := state.openLesson(lessonID); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}

	rlConfig := &readline.Config{
		Prompt:            "\033[32mzplay>\033[0m ",
		HistoryFile:       historyPath,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		fmt.Printf("Failed to create readline instance, falling back to basic input: %v\n", err)
		startBasicREPL(state)
		return
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(state.buffer) > 0 {
					state.buffer = nil
					fmt.Println("Buffer cleared")
				} else {
					fmt.Println("Use ':quit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if quit := state.handleLine(line); quit {
			break
		}
	}

	state.session.detach()
}

// startBasicREPL is the fallback loop when readline is unavailable (e.g.
// input is a pipe).
func startBasicREPL(state *replState) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("zplay> ")
		if !scanner.Scan() {
			break
		}
		if quit := state.handleLine(scanner.Text()); quit {
			break
		}
	}
	// A piped snippet usually ends without a trailing blank line.
	if len(state.buffer) > 0 {
		state.runBuffer()
	}
	state.session.detach()
}

// handleLine dispatches one input line. Returns true to exit.
func (s *replState) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, ":") {
		return s.executeCommand(trimmed)
	}

	if trimmed == "" {
		if len(s.buffer) > 0 {
			s.runBuffer()
		}
		return false
	}

	s.buffer = append(s.buffer, line)
	return false
}

func (s *replState) executeCommand(input string) bool {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case ":quit", ":exit", ":q":
		fmt.Println("Goodbye!")
		return true

	case ":help", ":h":
		s.printHelp()

	case ":run":
		if len(s.buffer) == 0 {
			fmt.Println("Buffer is empty")
			return false
		}
		s.runBuffer()

	case ":clear":
		s.buffer = nil
		fmt.Println("Buffer cleared")

	case ":show":
		if len(s.buffer) == 0 {
			fmt.Println("Buffer is empty")
			return false
		}
		fmt.Println(strings.Join(s.buffer, "\n"))

	case ":load":
		if len(args) != 1 {
			fmt.Println("Usage: :load <file>")
			return false
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		s.buffer = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		fmt.Printf("Loaded %d lines (':run' to execute)\n", len(s.buffer))

	case ":state":
		s.showState()

	case ":call":
		if len(args) == 0 {
			fmt.Println("Usage: :call <action> [args...]")
			return false
		}
		s.callAction(args[0], args[1:])

	case ":render":
		s.renderComponent()

	case ":lessons":
		s.listLessons()

	case ":lesson":
		if len(args) != 1 {
			fmt.Println("Usage: :lesson <id>")
			return false
		}
		if err := s.openLesson(args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

	case ":hint":
		s.showHint()

	case ":solution":
		s.loadSolution()

	case ":done":
		s.markDone()

	case ":progress":
		done := s.progress.Completed()
		fmt.Printf("Completed %d/%d lessons: %v\n", len(done), len(s.catalog.Lessons), done)

	default:
		fmt.Printf("Unknown command %s (':help' for commands)\n", cmd)
	}
	return false
}

func (s *replState) printHelp() {
	fmt.Println("Snippet lines are buffered; an empty line (or ':run') executes the buffer.")
	fmt.Println("Commands:")
	fmt.Println("  :run              Run the current buffer")
	fmt.Println("  :show             Print the current buffer")
	fmt.Println("  :clear            Discard the current buffer")
	fmt.Println("  :load <file>      Replace the buffer with a file's contents")
	fmt.Println("  :state            Show the current store state")
	fmt.Println("  :call <action>    Invoke an action on the current store (args as JSON)")
	fmt.Println("  :render           Re-render the current component")
	fmt.Println("  :lessons          List lessons and completion")
	fmt.Println("  :lesson <id>      Load a lesson's starter code into the buffer")
	fmt.Println("  :hint             Show the next hint for the current lesson")
	fmt.Println("  :solution         Load the current lesson's solution into the buffer")
	fmt.Println("  :done             Mark the current lesson complete")
	fmt.Println("  :progress         Show overall progress")
	fmt.Println("  :quit             Exit")
}

func (s *replState) runBuffer() {
	source := strings.Join(s.buffer, "\n")
	s.buffer = nil
	res := s.session.runSource(source)

	if res.OK && s.currentLesson != "" {
		if l, ok := s.catalog.Find(s.currentLesson); ok && s.lessonSatisfied(l, res) {
			fmt.Printf("Lesson %q produced its expected binding (':done' to mark complete)\n", l.ID)
		}
	}
}

// lessonSatisfied reports whether the run produced the lesson's expected
// binding.
func (s *replState) lessonSatisfied(l *lesson.Lesson, res *artifact.Result) bool {
	switch res.Kind {
	case artifact.KindStore:
		return res.StoreName == l.Binding
	case artifact.KindStores:
		_, ok := res.Stores[l.Binding]
		return ok
	case artifact.KindComponent:
		// Component bindings resolve under the probe name; the display
		// name may differ, so any component satisfies a component lesson.
		for _, name := range artifact.ComponentNames {
			if name == l.Binding {
				return true
			}
		}
	}
	return false
}

func (s *replState) showState() {
	res := s.session.current()
	if res == nil || !res.OK {
		fmt.Println("No successful run yet")
		return
	}
	switch res.Kind {
	case artifact.KindStore:
		printSnapshot(res.StoreName, res.Store.Snapshot())
	case artifact.KindStores:
		for _, name := range res.StoreOrder {
			printSnapshot(name, res.Stores[name].Snapshot())
		}
	default:
		fmt.Println("Current result has no store")
	}
}

func (s *replState) callAction(action string, rawArgs []string) {
	res := s.session.current()
	if res == nil || !res.OK || res.Store == nil {
		fmt.Println("No store to call into")
		return
	}

	// Arguments parse as JSON where possible; bare words pass as strings.
	args := make([]interface{}, len(rawArgs))
	for i, raw := range rawArgs {
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		args[i] = v
	}

	// Multi-store results accept store.action to pick the target.
	target := res.Store
	if name, rest, found := strings.Cut(action, "."); found && res.IsMulti() {
		if h, ok := res.Stores[name]; ok {
			target, action = h, rest
		}
	}

	if err := target.Call(action, args...); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func (s *replState) renderComponent() {
	res := s.session.current()
	if res == nil || !res.OK || res.Component == nil {
		fmt.Println("No component to render")
		return
	}
	out, err := res.Component.Render()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(out)
}

func (s *replState) listLessons() {
	for i, l := range s.catalog.Lessons {
		marker := " "
		if s.progress.Done(l.ID) {
			marker = "✓"
		}
		active := ""
		if l.ID == s.currentLesson {
			active = " (current)"
		}
		fmt.Printf("%s %2d. %-12s %s%s\n", marker, i+1, l.ID, l.Title, active)
	}
}

func (s *replState) openLesson(id string) error {
	l, ok := s.catalog.Find(id)
	if !ok {
		return fmt.Errorf("unknown lesson %q (':lessons' to list)", id)
	}

	s.currentLesson = l.ID
	s.hintIndex = 0
	s.buffer = strings.Split(strings.TrimRight(l.Starter, "\n"), "\n")

	fmt.Printf("Lesson: %s\n", l.Title)
	fmt.Println(strings.TrimSpace(l.Summary))
	fmt.Printf("Starter code loaded into the buffer (':show' to view, ':run' to execute)\n")
	return nil
}

func (s *replState) showHint() {
	if s.currentLesson == "" {
		fmt.Println("No lesson in progress (':lesson <id>' to start one)")
		return
	}
	l, ok := s.catalog.Find(s.currentLesson)
	if !ok || len(l.Hints) == 0 {
		fmt.Println("No hints for this lesson")
		return
	}
	if s.hintIndex >= len(l.Hints) {
		s.hintIndex = 0
	}
	fmt.Printf("Hint %d/%d: %s\n", s.hintIndex+1, len(l.Hints), l.Hints[s.hintIndex])
	s.hintIndex++
}

func (s *replState) loadSolution() {
	if s.currentLesson == "" {
		fmt.Println("No lesson in progress (':lesson <id>' to start one)")
		return
	}
	l, ok := s.catalog.Find(s.currentLesson)
	if !ok || l.Solution == "" {
		fmt.Println("No solution recorded for this lesson")
		return
	}
	s.buffer = strings.Split(strings.TrimRight(l.Solution, "\n"), "\n")
	fmt.Println("Solution loaded into the buffer (':run' to execute)")
}

func (s *replState) markDone() {
	if s.currentLesson == "" {
		fmt.Println("No lesson in progress")
		return
	}
	if err := s.progress.MarkDone(s.currentLesson); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Lesson %q marked complete\n", s.currentLesson)
}

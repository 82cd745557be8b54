// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package normalize turns lesson source written in the typed, module-based
// dialect into a dependency-free script body that the sandbox can execute
// directly.
//
// This is not a compiler. The passes are ordered pattern substitutions
// tuned to the bounded grammar the lesson corpus uses; constructs outside
// that shape pass through unchanged and surface later as execution errors.
// The one structural concession is interface-block removal, which scans to
// the matching closing brace instead of trusting a regex across lines.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Pass 1: whole-line module imports, default and named-list shapes.
	reImportDefault = regexp.MustCompile(`(?m)^[ \t]*import\s+[A-Za-z_$][\w$]*\s+from\s+['"][^'"]*['"];?[ \t]*\r?\n?`)
	reImportNamed   = regexp.MustCompile(`(?m)^[ \t]*import\s*\{[^}]*\}\s*from\s+['"][^'"]*['"];?[ \t]*\r?\n?`)

	// Pass 2: single-line type aliases. Interface blocks are handled by
	// stripInterfaces below.
	reTypeAlias = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?type\s+[A-Za-z_$][\w$]*(?:<[^=]*?>)?\s*=[^\n]*\r?\n?`)

	// Pass 3: explicit type arguments on the store-construction call.
	reCreateGeneric = regexp.MustCompile(`\bcreate\s*<[^<>()]*(?:<[^<>()]*>[^<>()]*)*>`)

	// Pass 4: capitalized-identifier annotations. The capital-letter
	// heuristic is what separates "looks like a type name" from object
	// literal keys and primitive-typed code the lessons never write.
	reDeclAnnotation   = regexp.MustCompile(`(\b(?:const|let|var)\s+[A-Za-z_$][\w$]*)\s*:\s*[A-Z][\w$.]*(?:<[^=]*?>)?(?:\[\])?\s*=`)
	reParamAnnotation  = regexp.MustCompile(`([(,]\s*[A-Za-z_$][\w$]*)\s*:\s*[A-Z][\w$.]*(?:<[^()]*?>)?(?:\[\])?\s*([,)])`)
	reReturnAnnotation = regexp.MustCompile(`\)\s*:\s*[A-Z][\w$.]*(?:<[^{=]*?>)?(?:\[\])?\s*(=>|\{)`)

	// Pass 5: type assertions.
	reAsAssertion = regexp.MustCompile(`\s+as\s+[A-Z][\w$.]*(?:<[^<>]*>)?(?:\[\])?`)

	// Pass 6: export keywords and standalone import-type statements.
	reImportType    = regexp.MustCompile(`(?m)^[ \t]*import\s+type\b[^\n]*\r?\n?`)
	reExportDefault = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+`)
	reExportKeyword = regexp.MustCompile(`(?m)^([ \t]*)export\s+`)

	// Pass 7: blank-line collapse.
	reBlankRuns = regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`)

	reInterfaceOpen = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?interface\s+[A-Za-z_$][\w$]*(?:\s+extends\s+[^{\n]+)?\s*\{`)
)

// Source transforms typed lesson source into an executable script body.
// Pure and deterministic; normalizing already-normalized text is a no-op.
func Source(text string) string {
	// 1. Module imports
	text = reImportDefault.ReplaceAllString(text, "")
	text = reImportNamed.ReplaceAllString(text, "")

	// 2. Structural type declarations
	text = stripInterfaces(text)
	text = reTypeAlias.ReplaceAllString(text, "")

	// 3. create<...> type arguments
	text = reCreateGeneric.ReplaceAllString(text, "create")

	// 4. Capitalized annotations on declarations, parameters, returns
	text = replaceUntilStable(reDeclAnnotation, text, "$1 =")
	text = replaceUntilStable(reParamAnnotation, text, "$1$2")
	text = replaceUntilStable(reReturnAnnotation, text, ") $1")

	// 5. as-assertions
	text = reAsAssertion.ReplaceAllString(text, "")

	// 6. export keywords, import type statements
	text = reImportType.ReplaceAllString(text, "")
	text = reExportDefault.ReplaceAllString(text, "$1")
	text = reExportKeyword.ReplaceAllString(text, "$1")

	// 7. Blank-line collapse
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimLeft(text, "\n")

	return text
}

// replaceUntilStable applies a replacement until a fixpoint. Parameter
// annotations consume their trailing separator, so adjacent annotated
// parameters need repeated passes.
func replaceUntilStable(re *regexp.Regexp, text, repl string) string {
	for {
		next := re.ReplaceAllString(text, repl)
		if next == text {
			return next
		}
		text = next
	}
}

// stripInterfaces removes interface declarations spanning to their closing
// brace. Brace depth is tracked by scanning; string literals inside an
// interface body are not expected in the lesson grammar.
func stripInterfaces(text string) string {
	for {
		loc := reInterfaceOpen.FindStringIndex(text)
		if loc == nil {
			return text
		}

		depth := 1
		end := -1
		for i := loc[1]; i < len(text); i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i + 1
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			// Unbalanced braces: leave the text alone and let execution
			// report the syntax error.
			return text
		}

		// Swallow a trailing semicolon and the rest of the line.
		for end < len(text) && (text[end] == ';' || text[end] == ' ' || text[end] == '\t') {
			end++
		}
		if end < len(text) && text[end] == '\r' {
			end++
		}
		if end < len(text) && text[end] == '\n' {
			end++
		}

		text = text[:loc[0]] + text[end:]
	}
}

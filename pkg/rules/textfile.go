// pkg/rules/textfile.go
package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loggrid/corrector/pkg/model"
)

// Rule files are plain newline-delimited text: one rule per line as
// tab-separated "from<TAB>to" or "from<TAB>to<TAB>category". Blank
// lines and surrounding whitespace are ignored; duplicate entries are
// dropped on load. Lines starting with '#' are comments.

// ReadRules parses rules from newline-delimited text.
func ReadRules(r io.Reader) ([]model.CorrectionRule, error) {
	scanner := bufio.NewScanner(r)

	var out []model.CorrectionRule
	seen := make(map[string]bool)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: expected 2 or 3 tab-separated fields, got %d", lineNo, len(fields))
		}

		from := strings.TrimSpace(fields[0])
		to := strings.TrimSpace(fields[1])
		category := ""
		if len(fields) == 3 {
			category = strings.TrimSpace(fields[2])
		}

		key := from + "\x00" + to + "\x00" + category
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, model.NewCorrectionRule(from, to, category))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	return out, nil
}

// LoadRulesFile reads a rules file into a fresh MemoryStore.
func LoadRulesFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()

	parsed, err := ReadRules(f)
	if err != nil {
		return nil, err
	}

	store := NewMemoryStore()
	for _, rule := range parsed {
		if _, err := store.Add(rule); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// WriteRules writes rules as newline-delimited text in priority order.
func WriteRules(w io.Writer, ruleList []model.CorrectionRule) error {
	writer := bufio.NewWriter(w)
	for _, rule := range ruleList {
		var line string
		if rule.Category == "" {
			line = fmt.Sprintf("%s\t%s\n", rule.FromValue, rule.ToValue)
		} else {
			line = fmt.Sprintf("%s\t%s\t%s\n", rule.FromValue, rule.ToValue, rule.Category)
		}
		if _, err := writer.WriteString(line); err != nil {
			return fmt.Errorf("failed to write rule: %w", err)
		}
	}
	return writer.Flush()
}

// SaveRulesFile writes every rule in a store to a file.
func SaveRulesFile(path string, store Store) error {
	ruleList, err := store.List(Filter{})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create rules file: %w", err)
	}
	defer f.Close()

	return WriteRules(f, ruleList)
}

package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Item is a single generated dashboard item as persisted in
// DashboardLib/<case>/items.json.
type Item struct {
	ID            string         `json:"id"`
	SourceFile    string         `json:"source_file,omitempty"`
	SourceItemIDs []string       `json:"source_item_ids,omitempty"`
	CreatedAt     string         `json:"created_at"`
	AnalysisType  string         `json:"analysis_type"`
	Component     Component      `json:"component"`
	Metadata      map[string]any `json:"metadata"`
}

// Store persists dashboard items per case under <root>/DashboardLib.
// Concurrent requests for the same case serialize on the store mutex; the
// file on disk is always a complete JSON array.
type Store struct {
	root string
	mu   sync.Mutex
	now  func() time.Time
}

func NewStore(root string) *Store {
	return &Store{root: root, now: time.Now}
}

func (s *Store) caseDir(caseName string) string {
	return filepath.Join(s.root, "DashboardLib", caseName)
}

func (s *Store) itemsPath(caseName string) string {
	return filepath.Join(s.caseDir(caseName), "items.json")
}

// Items returns all items for a case. A missing items file is an empty
// library, not an error.
func (s *Store) Items(caseName string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(caseName)
}

func (s *Store) load(caseName string) ([]Item, error) {
	data, err := os.ReadFile(s.itemsPath(caseName))
	if os.IsNotExist(err) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read items for case %s: %w", caseName, err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse items for case %s: %w", caseName, err)
	}
	return items, nil
}

func (s *Store) save(caseName string, items []Item) error {
	if err := os.MkdirAll(s.caseDir(caseName), 0o755); err != nil {
		return fmt.Errorf("create dashboard dir for case %s: %w", caseName, err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal items for case %s: %w", caseName, err)
	}
	if err := os.WriteFile(s.itemsPath(caseName), data, 0o644); err != nil {
		return fmt.Errorf("write items for case %s: %w", caseName, err)
	}
	return nil
}

// Append adds new items to the case library, preserving existing ones.
func (s *Store) Append(caseName string, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(caseName)
	if err != nil {
		return err
	}
	return s.save(caseName, append(existing, items...))
}

// Delete removes the item with the given ID and returns the remaining count.
func (s *Store) Delete(caseName, itemID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(caseName)
	if err != nil {
		return 0, err
	}
	kept := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return len(items), fmt.Errorf("item %s not found in case %s", itemID, caseName)
	}
	if err := s.save(caseName, kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}

// Update replaces an item's component, recording when and why.
func (s *Store) Update(caseName, itemID string, component Component, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(caseName)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID != itemID {
			continue
		}
		items[i].Component = component
		if items[i].Metadata == nil {
			items[i].Metadata = map[string]any{}
		}
		items[i].Metadata["last_updated"] = s.now().Format(time.RFC3339)
		items[i].Metadata["update_reason"] = reason
		return s.save(caseName, items)
	}
	return fmt.Errorf("item %s not found in case %s", itemID, caseName)
}

// Consolidate creates a new item that replaces the information of several
// source items, tagging it with their IDs.
func (s *Store) Consolidate(caseName string, component Component, sourceItemIDs []string, reason string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(caseName)
	if err != nil {
		return Item{}, err
	}
	now := s.now()
	item := Item{
		ID:            fmt.Sprintf("%s_consolidated_%s", caseName, now.Format("20060102_150405")),
		SourceItemIDs: sourceItemIDs,
		CreatedAt:     now.Format(time.RFC3339),
		AnalysisType:  "consolidated_analysis",
		Component:     component,
		Metadata: map[string]any{
			"component_type":       component.Type(),
			"consolidation_reason": reason,
			"source_items_count":   len(sourceItemIDs),
			"created_by":           "control_agent",
		},
	}
	if err := s.save(caseName, append(items, item)); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Deduplicate removes items with an identical dedupe key, keeping the first
// occurrence. Metric cards key on type|label|value; everything else on
// type|title.
func (s *Store) Deduplicate(caseName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(caseName)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(items))
	kept := items[:0]
	removed := 0
	for _, item := range items {
		key := dedupeKey(item.Component)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(caseName, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func dedupeKey(c Component) string {
	if c.Type() == TypeMetricCard {
		return c.Type() + "|" + c.DisplayTitle() + "|" + c.Value()
	}
	return c.Type() + "|" + c.DisplayTitle()
}

// Statistics summarizes a case's item library for the control agent.
type Statistics struct {
	TotalItems       int             `json:"total_items"`
	ByType           map[string]int  `json:"by_type"`
	BySourceFile     map[string]int  `json:"by_source_file"`
	BySize           map[string]int  `json:"by_size"`
	CreationTimeline []TimelineEntry `json:"creation_timeline"`
}

type TimelineEntry struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Type      string `json:"type"`
}

func (s *Store) Statistics(caseName string) (Statistics, error) {
	items, err := s.Items(caseName)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalItems:   len(items),
		ByType:       map[string]int{},
		BySourceFile: map[string]int{},
		BySize:       map[string]int{},
	}
	for _, item := range items {
		itemType := item.Component.Type()
		if itemType == "" {
			itemType = "unknown"
		}
		stats.ByType[itemType]++

		source := item.SourceFile
		if source == "" {
			source = "unknown"
		}
		stats.BySourceFile[source]++

		size := item.Component.Size()
		if size == "" {
			size = "unknown"
		}
		stats.BySize[size]++

		if item.CreatedAt != "" {
			stats.CreationTimeline = append(stats.CreationTimeline, TimelineEntry{
				ID:        item.ID,
				CreatedAt: item.CreatedAt,
				Type:      itemType,
			})
		}
	}
	sort.Slice(stats.CreationTimeline, func(i, j int) bool {
		return stats.CreationTimeline[i].CreatedAt < stats.CreationTimeline[j].CreatedAt
	})
	return stats, nil
}

// SimilarityReport scores how alike two items are so the control agent can
// decide whether to merge them.
type SimilarityReport struct {
	Score          float64       `json:"similarity_score"`
	Factors        []string      `json:"similarity_factors"`
	Recommendation string        `json:"recommendation"`
	Item1          SimilarityRef `json:"item1_summary"`
	Item2          SimilarityRef `json:"item2_summary"`
}

type SimilarityRef struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

func (s *Store) Similarity(caseName, itemID1, itemID2 string) (SimilarityReport, error) {
	items, err := s.Items(caseName)
	if err != nil {
		return SimilarityReport{}, err
	}

	var item1, item2 *Item
	for i := range items {
		switch items[i].ID {
		case itemID1:
			item1 = &items[i]
		case itemID2:
			item2 = &items[i]
		}
	}
	if item1 == nil || item2 == nil {
		return SimilarityReport{}, fmt.Errorf("one or both items not found in case %s", caseName)
	}

	var score float64
	var factors []string

	if item1.Component.Type() == item2.Component.Type() && item1.Component.Type() != "" {
		score += 30
		factors = append(factors, "Same component type")
	}

	overlap := titleOverlap(item1.Component.DisplayTitle(), item2.Component.DisplayTitle())
	score += overlap * 40
	if overlap > 0.3 {
		factors = append(factors, fmt.Sprintf("Title word overlap: %.2f", overlap))
	}

	if item1.SourceFile != "" && item1.SourceFile == item2.SourceFile {
		score += 20
		factors = append(factors, "Same source file")
	}

	if item1.Component.Type() == TypeMetricCard && item2.Component.Type() == TypeMetricCard {
		if v := item1.Component.Value(); v != "" && v == item2.Component.Value() {
			score += 10
			factors = append(factors, "Same metric value")
		}
	}

	if score > 100 {
		score = 100
	}

	recommendation := "review"
	switch {
	case score > 70:
		recommendation = "merge"
	case score < 30:
		recommendation = "keep_separate"
	}

	return SimilarityReport{
		Score:          score,
		Factors:        factors,
		Recommendation: recommendation,
		Item1:          SimilarityRef{ID: itemID1, Type: item1.Component.Type(), Title: displayOrUntitled(item1.Component)},
		Item2:          SimilarityRef{ID: itemID2, Type: item2.Component.Type(), Title: displayOrUntitled(item2.Component)},
	}, nil
}

func displayOrUntitled(c Component) string {
	if t := c.DisplayTitle(); t != "" {
		return t
	}
	return "Untitled"
}

func titleOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	union := len(setB)
	for w := range setA {
		if setB[w] {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// OptimizationLog is written when the control agent declares the library
// optimized.
type OptimizationLog struct {
	CaseName              string `json:"case_name"`
	CompletedAt           string `json:"completed_at"`
	Summary               string `json:"summary"`
	FinalItemCount        int    `json:"final_item_count"`
	OptimizationCompleted bool   `json:"optimization_completed"`
}

func (s *Store) WriteOptimizationLog(caseName, summary string, finalItemCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.caseDir(caseName), 0o755); err != nil {
		return fmt.Errorf("create dashboard dir for case %s: %w", caseName, err)
	}
	log := OptimizationLog{
		CaseName:              caseName,
		CompletedAt:           s.now().Format(time.RFC3339),
		Summary:               summary,
		FinalItemCount:        finalItemCount,
		OptimizationCompleted: true,
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal optimization log: %w", err)
	}
	path := filepath.Join(s.caseDir(caseName), "optimization_log.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write optimization log: %w", err)
	}
	return nil
}

package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

const leafIndex = -1

type forestNode struct {
	Feature   *int      `json:"feature"`
	Threshold *float64  `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

func (n forestNode) isLeaf() bool { return n.Left == leafIndex && n.Right == leafIndex }

type forestTree struct {
	Nodes []forestNode `json:"nodes"`
}

type forestDocument struct {
	Kind         string       `json:"kind"`
	FeatureNames []string     `json:"feature_names"`
	Classes      []int        `json:"classes"`
	Trees        []forestTree `json:"trees"`
}

// Forest is an in-process random-forest classifier. It is read-only after
// load and safe for concurrent use.
type Forest struct {
	path     string
	features []string
	classes  []int
	trees    []forestTree
}

// LoadForest reads and validates a forest export. The export's feature
// names must match the schema's column order exactly.
func LoadForest(path string, schema *questionnaire.Schema) (*Forest, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: path, Err: err}
	}
	f, err := parseForest(raw, schema)
	if err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: path, Err: err}
	}
	f.path = path
	return f, nil
}

func parseForest(raw []byte, schema *questionnaire.Schema) (*Forest, error) {
	var doc forestDocument
	if err := decodeDocument(raw, forestSchemaName, &doc); err != nil {
		return nil, err
	}
	if err := checkFeatureOrder(doc.FeatureNames, schema.FeatureNames()); err != nil {
		return nil, err
	}
	for i, t := range doc.Trees {
		if err := checkTree(t, len(doc.FeatureNames), len(doc.Classes)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &Forest{
		features: doc.FeatureNames,
		classes:  doc.Classes,
		trees:    doc.Trees,
	}, nil
}

func checkFeatureOrder(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("feature count %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}

// checkTree verifies that every node is reachable exactly once from the
// root, so traversal always terminates at a well-formed leaf.
func checkTree(t forestTree, nFeatures, nClasses int) error {
	visited := make([]bool, len(t.Nodes))
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i < 0 || i >= len(t.Nodes) {
			return fmt.Errorf("node index %d out of range", i)
		}
		if visited[i] {
			return fmt.Errorf("node %d reached twice", i)
		}
		visited[i] = true

		n := t.Nodes[i]
		if n.isLeaf() {
			if len(n.Value) != nClasses {
				return fmt.Errorf("leaf %d has %d values, want %d", i, len(n.Value), nClasses)
			}
			if sum(n.Value) <= 0 {
				return fmt.Errorf("leaf %d has no samples", i)
			}
			continue
		}
		if n.Left == leafIndex || n.Right == leafIndex {
			return fmt.Errorf("node %d has a single child", i)
		}
		if n.Feature == nil || n.Threshold == nil {
			return fmt.Errorf("split node %d has no feature or threshold", i)
		}
		if *n.Feature >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, *n.Feature, nFeatures)
		}
		stack = append(stack, n.Left, n.Right)
	}
	return nil
}

func sum(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

// Classify averages the leaf class distributions of every tree and returns
// the class with the highest mean probability. Ties go to the lower index.
func (f *Forest) Classify(ctx context.Context, features questionnaire.FeatureVector) (int, error) {
	if f == nil || len(f.trees) == 0 {
		return 0, &inference.ModelUnavailableError{Artifact: "forest", Err: errors.New("not loaded")}
	}
	if err := ctx.Err(); err != nil {
		return 0, &inference.InferenceError{Err: err}
	}
	probs := make([]float64, len(f.classes))
	for _, t := range f.trees {
		leaf := t.leaf(features)
		total := sum(leaf)
		for i, v := range leaf {
			probs[i] += v / total
		}
	}
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return f.classes[best], nil
}

func (t forestTree) leaf(features questionnaire.FeatureVector) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if float64(features[*n.Feature]) <= *n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Classes returns the encoded labels the forest can produce.
func (f *Forest) Classes() []int {
	out := make([]int, len(f.classes))
	copy(out, f.classes)
	return out
}

// Describe summarizes the loaded forest.
func (f *Forest) Describe() map[string]any {
	nodes := 0
	for _, t := range f.trees {
		nodes += len(t.Nodes)
	}
	return map[string]any{
		"kind":    "random_forest",
		"path":    f.path,
		"trees":   len(f.trees),
		"nodes":   nodes,
		"classes": f.Classes(),
	}
}

package ml

import (
	"context"
	"fmt"
	"math"
)

// treeNode is one node of an XGBoost JSON dump (Booster.get_dump(dump_format="json")).
// Split nodes reference their direct children by nodeid.
type treeNode struct {
	NodeID         *int       `json:"nodeid" yaml:"nodeid"`
	Depth          int        `json:"depth,omitempty" yaml:"depth,omitempty"`
	Split          string     `json:"split,omitempty" yaml:"split,omitempty"`
	SplitCondition *float64   `json:"split_condition,omitempty" yaml:"split_condition,omitempty"`
	Yes            *int       `json:"yes,omitempty" yaml:"yes,omitempty"`
	No             *int       `json:"no,omitempty" yaml:"no,omitempty"`
	Missing        *int       `json:"missing,omitempty" yaml:"missing,omitempty"`
	Leaf           *float64   `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Gain           float64    `json:"gain,omitempty" yaml:"gain,omitempty"`
	Cover          float64    `json:"cover,omitempty" yaml:"cover,omitempty"`
	Children       []treeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// flatNode is a compiled tree node. Leaves have feature == -1.
type flatNode struct {
	feature   int
	threshold float64
	yes       int
	no        int
	missing   int
	leaf      float64
}

type tree struct {
	nodes []flatNode
}

func (t tree) score(row []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature < 0 {
			return n.leaf
		}
		v := row[n.feature]
		switch {
		case math.IsNaN(v):
			i = n.missing
		case v < n.threshold:
			i = n.yes
		default:
			i = n.no
		}
	}
}

// TreeEnsemble is a gradient-boosted tree classifier trained with the
// binary:logistic objective. The fraud probability is
// sigmoid(logit(base_score) + sum of one leaf per tree).
type TreeEnsemble struct {
	baseMargin  float64
	trees       []tree
	numFeatures int
}

func newTreeEnsemble(spec *modelSpec, index map[string]int) (*TreeEnsemble, error) {
	baseScore := 0.5
	if spec.BaseScore != nil {
		baseScore = *spec.BaseScore
	}
	if !(baseScore > 0 && baseScore < 1) {
		return nil, fmt.Errorf("base_score must be within (0, 1), got %v", baseScore)
	}
	if len(spec.Trees) == 0 {
		return nil, fmt.Errorf("gbtree model has no trees")
	}

	ensemble := &TreeEnsemble{
		baseMargin:  math.Log(baseScore / (1 - baseScore)),
		trees:       make([]tree, 0, len(spec.Trees)),
		numFeatures: len(index),
	}
	for i := range spec.Trees {
		t, err := compileTree(&spec.Trees[i], index)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		ensemble.trees = append(ensemble.trees, t)
	}
	return ensemble, nil
}

func compileTree(root *treeNode, index map[string]int) (tree, error) {
	var t tree
	var add func(n *treeNode) (int, error)
	add = func(n *treeNode) (int, error) {
		if n.NodeID == nil {
			return 0, fmt.Errorf("node without nodeid")
		}
		id := *n.NodeID
		pos := len(t.nodes)
		t.nodes = append(t.nodes, flatNode{feature: -1})

		if n.Leaf != nil {
			if n.Split != "" || len(n.Children) > 0 {
				return 0, fmt.Errorf("node %d is both a leaf and a split", id)
			}
			t.nodes[pos].leaf = *n.Leaf
			return pos, nil
		}

		if n.Split == "" || n.SplitCondition == nil || n.Yes == nil || n.No == nil {
			return 0, fmt.Errorf("split node %d is incomplete", id)
		}
		feature, ok := index[n.Split]
		if !ok {
			return 0, fmt.Errorf("node %d splits on unknown feature %q", id, n.Split)
		}

		children := make(map[int]int, len(n.Children))
		for i := range n.Children {
			child := &n.Children[i]
			cpos, err := add(child)
			if err != nil {
				return 0, err
			}
			children[*child.NodeID] = cpos
		}

		missingID := *n.Yes
		if n.Missing != nil {
			missingID = *n.Missing
		}
		yes, okYes := children[*n.Yes]
		no, okNo := children[*n.No]
		missing, okMissing := children[missingID]
		if !okYes || !okNo || !okMissing {
			return 0, fmt.Errorf("node %d references a child it does not contain", id)
		}

		t.nodes[pos] = flatNode{
			feature:   feature,
			threshold: *n.SplitCondition,
			yes:       yes,
			no:        no,
			missing:   missing,
		}
		return pos, nil
	}

	if _, err := add(root); err != nil {
		return tree{}, err
	}
	return t, nil
}

// PredictProba implements Classifier.
func (e *TreeEnsemble) PredictProba(_ context.Context, row []float64) ([]float64, error) {
	if len(row) != e.numFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", e.numFeatures, len(row))
	}

	margin := e.baseMargin
	for _, t := range e.trees {
		margin += t.score(row)
	}
	p := sigmoid(margin)
	return []float64{1 - p, p}, nil
}

// Kind implements Classifier.
func (e *TreeEnsemble) Kind() string {
	return KindTreeEnsemble
}

// NumTrees returns the number of boosted trees.
func (e *TreeEnsemble) NumTrees() int {
	return len(e.trees)
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}

package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/parlaydesk/tracker/internal/view"
)

// Tree node references.
type (
	monthRef  string
	parlayRef string
)

// SeasonTreeView is a collapsible months -> parlays -> legs tree.
type SeasonTreeView struct {
	tree     *tview.TreeView
	root     *tview.TreeNode
	model    view.Model
	onSelect func(p view.Parlay, ok bool)
}

// NewSeasonTreeView creates a tree. onSelect is called whenever the cursor
// moves, with ok false when the current node is not inside a parlay.
func NewSeasonTreeView(onSelect func(p view.Parlay, ok bool)) *SeasonTreeView {
	root := tview.NewTreeNode("Season").SetColor(tcell.ColorYellow)
	tree := tview.NewTreeView().
		SetRoot(root).
		SetCurrentNode(root)

	tree.SetTitle(" Parlays ").SetBorder(true)

	v := &SeasonTreeView{tree: tree, root: root, onSelect: onSelect}

	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})
	tree.SetChangedFunc(v.changed)

	return v
}

// Widget returns the tview primitive.
func (v *SeasonTreeView) Widget() tview.Primitive {
	return v.tree
}

// Update rebuilds the tree from m, keeping expanded months and the cursor
// where they still exist. The latest month starts expanded.
func (v *SeasonTreeView) Update(m view.Model) {
	expanded := make(map[monthRef]bool)
	for _, node := range v.root.GetChildren() {
		if ref, ok := node.GetReference().(monthRef); ok && node.IsExpanded() {
			expanded[ref] = true
		}
	}
	firstBuild := len(v.root.GetChildren()) == 0

	var current interface{}
	if node := v.tree.GetCurrentNode(); node != nil {
		current = node.GetReference()
	}

	v.model = m
	v.root.ClearChildren()
	v.root.SetText(fmt.Sprintf("Season %s  %s", m.Season, summaryLine(m.Totals)))

	var selected *tview.TreeNode
	for i, month := range m.Months {
		ref := monthRef(month.Key)
		mNode := tview.NewTreeNode(fmt.Sprintf("%s  %s", month.Label, summaryLine(month.Totals))).
			SetReference(ref).
			SetColor(tcell.ColorAqua).
			SetExpanded(expanded[ref] || (firstBuild && i == len(m.Months)-1))
		if current == ref {
			selected = mNode
		}

		for _, p := range month.Parlays {
			pNode := parlayNode(p)
			if current == pNode.GetReference() {
				selected = pNode
			}
			mNode.AddChild(pNode)
		}
		v.root.AddChild(mNode)
	}

	if len(m.Undated) > 0 {
		uNode := tview.NewTreeNode(fmt.Sprintf("Undated (%d)", len(m.Undated))).
			SetReference(monthRef("")).
			SetColor(tcell.ColorGray).
			SetExpanded(expanded[monthRef("")])
		for _, p := range m.Undated {
			uNode.AddChild(parlayNode(p))
		}
		v.root.AddChild(uNode)
	}

	if selected == nil {
		selected = v.root
	}
	v.tree.SetCurrentNode(selected)
	v.changed(selected)
}

func (v *SeasonTreeView) changed(node *tview.TreeNode) {
	if v.onSelect == nil || node == nil {
		return
	}

	ref, ok := node.GetReference().(parlayRef)
	if !ok {
		v.onSelect(view.Parlay{}, false)
		return
	}
	p, found := v.model.Parlay(string(ref))
	v.onSelect(p, found)
}

func parlayNode(p view.Parlay) *tview.TreeNode {
	node := tview.NewTreeNode(fmt.Sprintf("%s @ %s  %s  %s", p.Date, p.Odds, p.Result, view.SignedMoney(p.Profit))).
		SetReference(parlayRef(p.Key)).
		SetColor(resultTreeColor(p.Result)).
		SetExpanded(false)

	for _, leg := range p.Legs {
		node.AddChild(tview.NewTreeNode(fmt.Sprintf("%s: %s @ %.2f", leg.Match, leg.Pick, leg.Odds)).
			SetReference(parlayRef(p.Key)).
			SetColor(resultTreeColor(leg.PickResult)))
	}
	return node
}

func summaryLine(t view.Totals) string {
	return fmt.Sprintf("%dW %dL %dP  %s", t.Wins, t.Losses, t.Pending, view.SignedMoney(t.Profit))
}

func resultTreeColor(result string) tcell.Color {
	switch resultColor(result) {
	case "green":
		return tcell.ColorGreen
	case "red":
		return tcell.ColorRed
	default:
		return tcell.ColorYellow
	}
}

package domain

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"attack", ActionAttack},
		{"ATTACK", ActionAttack},
		{"Use_Item", ActionUseItem},
		{" end_turn ", ActionEndTurn},
		{"search", ActionSearch},
		{"teleport", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseAction(tt.input)
		if result != tt.expected {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionMove, "move"},
		{ActionFlee, "flee"},
		{ActionUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestActionType_Phases(t *testing.T) {
	if !ActionAttack.IsCombatAction() || ActionAttack.IsExplorationAction() {
		t.Error("attack must be combat-only")
	}
	if ActionSearch.IsCombatAction() || !ActionSearch.IsExplorationAction() {
		t.Error("search must be exploration-only")
	}
	if !ActionMove.IsCombatAction() || !ActionMove.IsExplorationAction() {
		t.Error("move is valid in both phases")
	}
}

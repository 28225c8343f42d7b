package models_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

func TestDecideWinner(t *testing.T) {
	tests := []struct {
		name  string
		state models.MatchState
		away  float64
		home  float64
		want  models.Winner
	}{
		{"final home wins", models.StatePost, 3, 7, models.WinnerHome},
		{"final away wins", models.StatePost, 21, 17, models.WinnerAway},
		{"final tie", models.StatePost, 2, 2, models.WinnerNone},
		{"live leader is not a winner", models.StateIn, 10, 0, models.WinnerNone},
		{"pre game", models.StatePre, 0, 0, models.WinnerNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.DecideWinner(tt.state, tt.away, tt.home)
			if got != tt.want {
				t.Errorf("DecideWinner(%s, %v, %v) = %s, want %s", tt.state, tt.away, tt.home, got, tt.want)
			}
		})
	}
}

func TestMatchState_Ongoing(t *testing.T) {
	if !models.StateIn.Ongoing() {
		t.Error("expected in to be ongoing")
	}
	if models.StatePre.Ongoing() || models.StatePost.Ongoing() {
		t.Error("expected pre/post not to be ongoing")
	}
}

func TestEvent_MarshalJSON_HeadToHead(t *testing.T) {
	event := models.Event{
		Sport:  "basketball_nba",
		League: "NBA",
		Away:   "BOS",
		Home:   "LAL",
		Status: "Scheduled",
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := decoded["field"]; ok {
		t.Error("head-to-head event must not carry field")
	}
	if decoded["winner"] != "none" {
		t.Errorf("winner = %v, want none", decoded["winner"])
	}
	if decoded["score"] != "-" {
		t.Errorf("score = %v, want -", decoded["score"])
	}
	if decoded["away_logo"] != "" {
		t.Errorf("away_logo = %v, want empty string", decoded["away_logo"])
	}
	if decoded["sport"] != "basketball_nba" {
		t.Errorf("sport = %v, want basketball_nba", decoded["sport"])
	}
}

func TestEvent_MarshalJSON_Field(t *testing.T) {
	event := models.Event{
		Kind:    models.KindField,
		Sport:   "racing_f1",
		League:  "F1",
		Session: "FP1 - Monaco GP",
		Field: []models.FieldEntry{
			{Position: 1, Number: 1, Name: "M. Verstappen", Flag: "https://flags/ned.png"},
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"away", "home", "winner", "score"} {
		if _, ok := decoded[key]; ok {
			t.Errorf("field event must not carry %q", key)
		}
	}

	field, ok := decoded["field"].([]interface{})
	if !ok || len(field) != 1 {
		t.Fatalf("field = %v, want one entry", decoded["field"])
	}
}

func TestEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   models.Event
	}{
		{"head to head", models.Event{
			Kind: models.KindHeadToHead, Sport: "hockey_nhl", League: "NHL", Status: "Final/OT",
			Away: "BOS", Home: "TOR", Score: "3 : 2", Winner: models.WinnerAway,
		}},
		{"field", models.Event{
			Kind: models.KindField, Sport: "racing_f1", League: "F1", Session: "Race - Monaco GP",
			Status: "Lap 12", Ongoing: true, Field: []models.FieldEntry{{Position: 1, Number: 16, Name: "C. Leclerc"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var got models.Event
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tt.in) {
				t.Errorf("got %+v, want %+v", got, tt.in)
			}
		})
	}
}

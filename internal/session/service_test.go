package session

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/mcq-trainer/backend/internal/dataset"
	"github.com/mcq-trainer/backend/internal/models"
)

type fakeOverrides struct {
	overrides map[string]*models.LocalOverride
}

func (f *fakeOverrides) Get(_ context.Context, userID int64, datasetID, questionID string) (*models.LocalOverride, error) {
	if f == nil || f.overrides == nil {
		return nil, nil
	}
	return f.overrides[fmt.Sprintf("%d/%s/%s", userID, datasetID, questionID)], nil
}

type fakeHistory struct {
	latest map[string]bool
}

func (f *fakeHistory) RecordResult(_ context.Context, _ int64, _, questionID string, correct bool) error {
	if f.latest == nil {
		f.latest = make(map[string]bool)
	}
	f.latest[questionID] = correct
	return nil
}

func (f *fakeHistory) LatestResults(_ context.Context, _ int64, _ string) (map[string]bool, error) {
	return f.latest, nil
}

func testStore(t *testing.T, n int) *dataset.Store {
	t.Helper()
	questions := make([]string, 0, n)
	for i := 0; i < n; i++ {
		super := "Physik"
		if i%2 == 1 {
			super = "Chemie"
		}
		questions = append(questions, fmt.Sprintf(`{
			"id":"q%d","examName":"H2021","questionText":"Frage %d",
			"aiSuperTopic":%q,"aiSubtopic":"Basis",
			"answers":[{"text":"a","isCorrect":true},{"text":"b","isCorrect":false},{"text":"c","isCorrect":false}],
			"correctIndices":[0]
		}`, i, i, super))
	}
	raw := `{"questions":[` + joinJSON(questions) + `]}`
	var p models.RawPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	store := dataset.NewStore()
	store.Replace("d1", dataset.Assemble([]*models.RawPayload{&p}, nil))
	return store
}

func joinJSON(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func newTestService(t *testing.T, n int) (*Service, *fakeHistory) {
	t.Helper()
	h := &fakeHistory{}
	return NewService(testStore(t, n), &fakeOverrides{}, h), h
}

func TestCreateIsDeterministicPerSeed(t *testing.T) {
	svc, _ := newTestService(t, 10)
	req := models.CreateSessionRequest{
		DatasetID: "d1",
		Config:    models.SessionConfig{Mode: models.ModePractice, Seed: "fixed"},
	}
	a, err := svc.Create(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := svc.Create(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !reflect.DeepEqual(a.QuestionOrder, b.QuestionOrder) {
		t.Error("same seed must yield the same question order")
	}
	if a.ID == b.ID {
		t.Error("sessions must get distinct ids")
	}
}

func TestCreateFiltersAndCaps(t *testing.T) {
	svc, _ := newTestService(t, 10)
	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{
		DatasetID: "d1",
		Config: models.SessionConfig{
			SuperTopics:   []string{"Physik"},
			QuestionCount: 3,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(sess.QuestionOrder) != 3 {
		t.Fatalf("order length = %d, want 3", len(sess.QuestionOrder))
	}
	set, _ := svc.datasets.Get("d1")
	for _, id := range sess.QuestionOrder {
		q, _ := set.Get(id)
		if *q.AISuperTopic != "Physik" {
			t.Errorf("question %s has topic %q, filter leaked", id, *q.AISuperTopic)
		}
	}
}

func TestCreateUnknownDataset(t *testing.T) {
	svc, _ := newTestService(t, 3)
	_, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "nope"})
	if err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestSubmitScoresAgainstCanonical(t *testing.T) {
	svc, hist := newTestService(t, 4)
	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	qid := sess.QuestionOrder[0]

	resp, err := svc.Submit(context.Background(), 1, sess.ID, qid, []int{0})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("canonical correct answer [0] must score as correct")
	}
	if resp.MultiSelect {
		t.Error("single correct index must not be multi-select")
	}
	if got := hist.latest[qid]; !got {
		t.Error("result not recorded to history")
	}

	resp, err = svc.Submit(context.Background(), 1, sess.ID, sess.QuestionOrder[1], []int{1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Correct {
		t.Error("wrong answer scored as correct")
	}

	p, err := svc.Progress(1, sess.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	want := models.Progress{Total: 4, Submitted: 2, Correct: 1, Wrong: 1}
	if p != want {
		t.Errorf("Progress = %+v, want %+v", p, want)
	}
}

func TestSubmitWithOverrideChangesScoring(t *testing.T) {
	store := testStore(t, 2)
	overrides := &fakeOverrides{overrides: map[string]*models.LocalOverride{}}
	svc := NewService(store, overrides, &fakeHistory{})

	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	qid := sess.QuestionOrder[0]
	overrides.overrides["1/d1/"+qid] = &models.LocalOverride{CorrectIndices: []int{2}}

	resp, err := svc.Submit(context.Background(), 1, sess.ID, qid, []int{2})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("override correct index must win for scoring")
	}
	if resp.UsedOriginalSolution {
		t.Error("response must flag the overridden solution")
	}
}

func TestSubmitNormalizesSelection(t *testing.T) {
	svc, _ := newTestService(t, 2)
	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Single correct index: a multi-pick truncates to its first entry.
	resp, err := svc.Submit(context.Background(), 1, sess.ID, sess.QuestionOrder[0], []int{0, 1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("single-select pick [0,1] must truncate to [0] and score correct")
	}

	// Out-of-range picks are dropped before comparison.
	resp, err = svc.Submit(context.Background(), 1, sess.ID, sess.QuestionOrder[1], []int{7, 0, -1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("out-of-range picks must be filtered, leaving the correct [0]")
	}
}

func TestSubmitForceOriginalBypassesOverride(t *testing.T) {
	store := testStore(t, 2)
	overrides := &fakeOverrides{overrides: map[string]*models.LocalOverride{}}
	svc := NewService(store, overrides, &fakeHistory{})

	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	qid := sess.QuestionOrder[0]
	overrides.overrides["1/d1/"+qid] = &models.LocalOverride{CorrectIndices: []int{2}}

	if err := svc.SetForceOriginal(1, sess.ID, qid, true); err != nil {
		t.Fatalf("SetForceOriginal: %v", err)
	}

	resp, err := svc.Submit(context.Background(), 1, sess.ID, qid, []int{0})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("forced original must score against the canonical [0], not the override")
	}

	resp, err = svc.Submit(context.Background(), 1, sess.ID, qid, []int{2})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Correct {
		t.Error("override index must not score while force-original is set")
	}
}

func TestSubmitUsesOriginalSolutionWhenAIModeOff(t *testing.T) {
	store := dataset.NewStore()
	raw := `{"questions":[{
		"id":"q0","questionText":"Geändert?",
		"answers":[{"text":"a"},{"text":"b"},{"text":"c"}],
		"originalCorrectIndices":[0],"finalCorrectIndices":[0,1],
		"aiAnswerConfidence":42
	}]}`
	var p models.RawPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	store.Replace("d1", dataset.Assemble([]*models.RawPayload{&p}, nil))
	svc := NewService(store, &fakeOverrides{}, &fakeHistory{})

	off := false
	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{
		DatasetID: "d1",
		Config:    models.SessionConfig{AIModeEnabled: &off},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := svc.Submit(context.Background(), 1, sess.ID, "q0", []int{0})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("AI mode off must score against the original solution [0]")
	}
	if !resp.UsedOriginalSolution {
		t.Error("response must flag the original solution")
	}
	if !reflect.DeepEqual(resp.CorrectIndices, []int{0}) {
		t.Errorf("CorrectIndices = %v, want original [0]", resp.CorrectIndices)
	}

	// With AI mode on the changed set applies.
	sess, err = svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	resp, err = svc.Submit(context.Background(), 1, sess.ID, "q0", []int{0, 1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct || resp.UsedOriginalSolution {
		t.Errorf("AI mode on must score the changed set, got correct=%v original=%v",
			resp.Correct, resp.UsedOriginalSolution)
	}
}

func TestGetReturnsIsolatedSnapshot(t *testing.T) {
	svc, _ := newTestService(t, 3)
	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	qid := sess.QuestionOrder[0]

	before, err := svc.Get(1, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Submit(context.Background(), 1, sess.ID, qid, []int{0}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if before.Submitted[qid] {
		t.Error("earlier snapshot must not see the later submission")
	}

	// Writes to a snapshot never reach the stored session.
	before.Submitted["q99"] = true
	before.QuestionOrder[0] = "tampered"
	after, err := svc.Get(1, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.Submitted["q99"] || after.QuestionOrder[0] == "tampered" {
		t.Error("snapshot writes leaked into the stored session")
	}
	if !after.Submitted[qid] {
		t.Error("fresh snapshot must carry the recorded submission")
	}
}

func TestSessionsAreOwnerScoped(t *testing.T) {
	svc, _ := newTestService(t, 3)
	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Get(2, sess.ID); err != ErrSessionNotFound {
		t.Errorf("foreign user access: err = %v, want ErrSessionNotFound", err)
	}
}

func TestForceOriginalTogglesDisplay(t *testing.T) {
	store := dataset.NewStore()
	raw := `{"questions":[{
		"id":"q0","questionText":"Original?","correctIndices":[0],
		"answers":[{"text":"a","isCorrect":true},{"text":"b","isCorrect":false},{"text":"c","isCorrect":false}],
		"aiAudit":{"reconstruction":{"reconstructedQuestion":{
			"questionText":"Rekonstruiert?",
			"answers":[{"answerIndex":1,"text":"r1"},{"answerIndex":2,"text":"r2"}]
		}}}
	}]}`
	var p models.RawPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	store.Replace("d1", dataset.Assemble([]*models.RawPayload{&p}, nil))
	svc := NewService(store, &fakeOverrides{}, &fakeHistory{})

	sess, err := svc.Create(context.Background(), 1, models.CreateSessionRequest{DatasetID: "d1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, v, err := svc.Display(context.Background(), 1, sess.ID, "q0")
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	if !v.UsedAIReconstruction || v.Text != "Rekonstruiert?" {
		t.Fatalf("default display should be the reconstruction, got %q", v.Text)
	}

	if err := svc.SetForceOriginal(1, sess.ID, "q0", true); err != nil {
		t.Fatalf("SetForceOriginal: %v", err)
	}
	_, v, err = svc.Display(context.Background(), 1, sess.ID, "q0")
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	if v.UsedAIReconstruction || v.Text != "Original?" {
		t.Errorf("forced original display, got %q (recon=%v)", v.Text, v.UsedAIReconstruction)
	}

	// Scoring never follows the reconstruction's two-answer layout.
	resp, err := svc.Submit(context.Background(), 1, sess.ID, "q0", []int{0})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Correct {
		t.Error("evaluation must stay on canonical indices")
	}
}

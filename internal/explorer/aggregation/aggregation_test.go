package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/pkg/utils"
)

func sampleTopics() []entity.Topic {
	return []entity.Topic{
		{ID: "t1", Name: "Mushroom coffee", Category: "Health", Stage: entity.StageEmerging, OpportunityScore: utils.ToPointer(82.0), CompetitionIndex: utils.ToPointer(35.0)},
		{ID: "t2", Name: "Sea moss gel", Category: "Health", Stage: entity.StageExploding, OpportunityScore: utils.ToPointer(64.0), CompetitionIndex: utils.ToPointer(70.0)},
		{ID: "t3", Name: "Snail mucin", Category: "Beauty", Stage: entity.StagePeaking, OpportunityScore: nil, CompetitionIndex: utils.ToPointer(10.0)},
		{ID: "t4", Name: "Lip oil", Category: "Beauty", Stage: entity.StageEmerging, OpportunityScore: utils.ToPointer(38.0), CompetitionIndex: nil},
		{ID: "t5", Name: "Cold plunge tub", Category: "Fitness", Stage: entity.StageEmerging, OpportunityScore: utils.ToPointer(91.0), CompetitionIndex: utils.ToPointer(22.0)},
		{ID: "t6", Name: "Peptide serum", Category: "Beauty", Stage: entity.Stage("mystery"), OpportunityScore: utils.ToPointer(64.0)},
	}
}

func ids(topics []entity.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.ID
	}
	return out
}

func TestGroupByCategory(t *testing.T) {
	got := GroupByCategory(sampleTopics())
	assert.Equal(t, []CategoryCount{
		{Category: "Beauty", Count: 3},
		{Category: "Health", Count: 2},
		{Category: "Fitness", Count: 1},
	}, got)

	tied := GroupByCategory([]entity.Topic{{Category: "Zoo"}, {Category: "Apparel"}})
	assert.Equal(t, "Apparel", tied[0].Category)
	assert.Equal(t, "Zoo", tied[1].Category)
}

func TestGroupByStage_ZeroFilledFixedOrder(t *testing.T) {
	for _, topics := range [][]entity.Topic{nil, sampleTopics(), {{Stage: entity.StageStable}}} {
		got := GroupByStage(topics)
		require.Len(t, got, len(entity.StageOrder))
		for i, sc := range got {
			assert.Equal(t, entity.StageOrder[i], sc.Stage)
		}
	}

	got := GroupByStage(sampleTopics())
	assert.Equal(t, 3, got[0].Count) // emerging
	assert.Equal(t, 1, got[1].Count) // exploding
	assert.Equal(t, 1, got[2].Count) // peaking
	assert.Equal(t, 0, got[3].Count) // declining
	assert.Equal(t, 1, got[4].Count) // unknown ("mystery")
	assert.Equal(t, 0, got[5].Count) // stable
}

func TestTopMovers_NullsLastAndStableTies(t *testing.T) {
	got := TopMovers(sampleTopics(), 10)
	assert.Equal(t, []string{"t5", "t1", "t2", "t6", "t4", "t3"}, ids(got))

	assert.Equal(t, []string{"t5", "t1"}, ids(TopMovers(sampleTopics(), 2)))
	assert.Empty(t, TopMovers(sampleTopics(), 0))
}

func TestTopMovers_Idempotent(t *testing.T) {
	topics := sampleTopics()
	first := TopMovers(topics, 5)
	second := TopMovers(topics, 5)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleTopics(), topics, "input must not be reordered")
}

func TestLowCompetition(t *testing.T) {
	got := LowCompetition(sampleTopics(), 10)
	assert.Equal(t, []string{"t3", "t5", "t1", "t2", "t4", "t6"}, ids(got))
}

func TestEmergingGems(t *testing.T) {
	got := EmergingGems(sampleTopics(), 5)
	assert.Equal(t, []string{"t5", "t1"}, ids(got))
}

func TestEmergingGems_NormalizesStage(t *testing.T) {
	topics := []entity.Topic{
		{ID: "a", Stage: entity.Stage("Emerging"), OpportunityScore: utils.ToPointer(70.0)},
		{ID: "b", Stage: entity.Stage(" EMERGING "), OpportunityScore: utils.ToPointer(80.0)},
		{ID: "c", Stage: entity.Stage("Exploding"), OpportunityScore: utils.ToPointer(90.0)},
	}

	assert.Equal(t, []string{"b", "a"}, ids(EmergingGems(topics, 5)))

	byStage := GroupByStage(topics)
	for _, sc := range byStage {
		if sc.Stage == entity.StageEmerging {
			assert.Equal(t, 2, sc.Count, "gems and stage counts agree on what is emerging")
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTopics(), 3)
	assert.Equal(t, 6, s.Total)
	assert.Len(t, s.TopMovers, 3)
	assert.Len(t, s.ByStage, 6)
	assert.Len(t, s.EmergingGems, 2)
}

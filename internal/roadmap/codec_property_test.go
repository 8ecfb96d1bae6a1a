package roadmap

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func genText() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,15}`)
}

func genTopic() *rapid.Generator[Topic] {
	return rapid.Custom(func(t *rapid.T) Topic {
		titles := rapid.SliceOfN(genText(), 0, 5).Draw(t, "sub_steps")
		steps := make([]SubStep, 0, len(titles))
		for _, s := range titles {
			steps = append(steps, SubStep{Title: s})
		}
		return Topic{
			Name:          genText().Draw(t, "topic"),
			EstimatedTime: rapid.SampledFrom([]string{"1 Week", "2 Weeks", "3 Days"}).Draw(t, "time"),
			Difficulty:    rapid.SampledFrom([]Difficulty{Beginner, Intermediate, Advanced}).Draw(t, "difficulty"),
			SubSteps:      steps,
		}
	})
}

// genDocument draws documents with distinct phase titles and at least one
// topic per phase, the domain where the round trip is lossless.
func genDocument() *rapid.Generator[Document] {
	return rapid.Custom(func(t *rapid.T) Document {
		n := rapid.IntRange(0, 5).Draw(t, "phases")
		doc := Document{Roadmap: make([]Phase, 0, n)}
		for i := 0; i < n; i++ {
			doc.Roadmap = append(doc.Roadmap, Phase{
				Title:  fmt.Sprintf("Phase %d: %s", i+1, genText().Draw(t, "phase")),
				Topics: rapid.SliceOfN(genTopic(), 1, 6).Draw(t, "topics"),
			})
		}
		return doc
	})
}

func TestToDocument_RoundTripPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genDocument().Draw(t, "doc")
		back := ToDocument(ToGraph(doc))

		if len(back.Roadmap) != len(doc.Roadmap) {
			t.Fatalf("phase count: got %d, want %d", len(back.Roadmap), len(doc.Roadmap))
		}
		for i, want := range doc.Roadmap {
			got := back.Roadmap[i]
			if got.Title != want.Title {
				t.Fatalf("phase %d title: got %q, want %q", i, got.Title, want.Title)
			}
			if len(got.Topics) != len(want.Topics) {
				t.Fatalf("phase %d topic count: got %d, want %d", i, len(got.Topics), len(want.Topics))
			}
			for j, wt := range want.Topics {
				gt := got.Topics[j]
				if gt.Name != wt.Name || gt.EstimatedTime != wt.EstimatedTime || gt.Difficulty != wt.Difficulty {
					t.Fatalf("phase %d topic %d: got %+v, want %+v", i, j, gt, wt)
				}
				if fmt.Sprint(gt.SubSteps) != fmt.Sprint(wt.SubSteps) {
					t.Fatalf("phase %d topic %d sub-steps: got %v, want %v", i, j, gt.SubSteps, wt.SubSteps)
				}
			}
		}
	})
}

func TestToGraph_EdgesReferenceExistingUniqueNodes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := ToGraph(genDocument().Draw(t, "doc"))
		if errs := ValidateGraph(g); len(errs) > 0 {
			t.Fatalf("invalid graph: %v", errs)
		}
	})
}

func TestDiffSummary_IdenticalGraphAlwaysDetailsUpdated(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := ToGraph(genDocument().Draw(t, "doc"))
		if got := DiffSummary(g, g); got != MessageDetailsUpdated {
			t.Fatalf("got %q", got)
		}
	})
}

func TestToDocument_EmptyFieldsComeBackAsDefaults(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topic := Topic{
			Name:          rapid.SampledFrom([]string{"", "Go"}).Draw(t, "topic"),
			EstimatedTime: rapid.SampledFrom([]string{"", "1 Week"}).Draw(t, "time"),
			Difficulty:    rapid.SampledFrom([]Difficulty{"", Beginner}).Draw(t, "difficulty"),
		}
		doc := Document{Roadmap: []Phase{{Title: "Phase 1", Topics: []Topic{topic}}}}

		got := ToDocument(ToGraph(doc)).Roadmap[0].Topics[0]

		want := Topic{
			Name:          orDefault(topic.Name, untitledTopic),
			EstimatedTime: orDefault(topic.EstimatedTime, notAvailable),
			Difficulty:    Difficulty(orDefault(string(topic.Difficulty), notAvailable)),
			SubSteps:      []SubStep{},
		}
		if fmt.Sprintf("%+v", got) != fmt.Sprintf("%+v", want) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	})
}

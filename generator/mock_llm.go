package generator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	mockCountRe = regexp.MustCompile(`Write (\d+) LinkedIn posts`)
	mockTopicRe = regexp.MustCompile(`about "([^"]*)"`)
)

// MockLLM is an offline stand-in that never calls a provider. Replies are
// deterministic so local runs and demos are repeatable.
type MockLLM struct {
	Model string
}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (Completion, error) {
	topic := "your topic"
	if mt := mockTopicRe.FindStringSubmatch(prompt.User); len(mt) == 2 {
		topic = mt[1]
	} else if i := strings.Index(prompt.User, "Topic: "); i >= 0 {
		topic = strings.TrimSpace(strings.SplitN(prompt.User[i+len("Topic: "):], "\n", 2)[0])
	}

	var text string
	switch prompt.Step {
	case StepOutline:
		text = fmt.Sprintf("Post 1: Why %s matters now.\nPost 2: Three lessons learned.\nPost 3: A question for the community.", topic)
	case StepGenerate:
		n := 1
		if mc := mockCountRe.FindStringSubmatch(prompt.User); len(mc) == 2 {
			n, _ = strconv.Atoi(mc[1])
		}
		var sb strings.Builder
		for i := 1; i <= n; i++ {
			sb.WriteString(fmt.Sprintf("Post %d:\n%s\n\n", i, mockPost(topic, i)))
		}
		text = sb.String()
	case StepHashtags:
		text = fmt.Sprintf("%s\n#Leadership\n#FutureOfWork\n#Productivity", topicTag(topic))
	default:
		text = mockPost(topic, 1)
	}

	model := m.Model
	if model == "" {
		model = "mock-1"
	}
	return Completion{
		Text:         text,
		InputTokens:  len(prompt.System+prompt.User) / 4,
		OutputTokens: len(text) / 4,
		Model:        model,
	}, nil
}

func mockPost(topic string, i int) string {
	return fmt.Sprintf("Angle %d on %s.\n\n"+
		"Most teams treat %s as a side project. The ones that win treat it as a habit: "+
		"they write down what good looks like, measure it weekly and share the results openly.\n\n"+
		"Here is the simple loop that worked for us: pick one metric, review it every Friday, "+
		"and change one thing at a time.\n\n"+
		"What is the one change that made the biggest difference for you?", i, topic, topic)
}

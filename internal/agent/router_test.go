package agent

import "testing"

func TestRouter_SelectBestAgent(t *testing.T) {
	router := NewRouter(DefaultRules())

	tests := []struct {
		query string
		want  Tool
	}{
		{"ابحث عن آخر أخبار السوق", ToolLiveSearch},
		{"What's the Bitcoin price TODAY?", ToolLiveSearch},
		{"Draw a cat wearing a hat", ToolImageGenerator},
		{"ارسم قطة", ToolImageGenerator},
		{"Translate this paragraph to French", ToolTranslator},
		{"ترجم هذه الجملة", ToolTranslator},
		{"search for golang tutorials", ToolWebSearch},
		{"احسب متوسط هذه الأرقام", ToolDataScientist},
		{"Why does this function panic?", ToolCodeAnalyst},
		{"Write a poem about the sea", ToolCreativeWriter},
		{"Plan a trip to Paris", ToolTravelAgent},
		{"hello there", ToolGeneral},
		{"", ToolGeneral},
	}

	for _, tt := range tests {
		if got := router.SelectBestAgent(tt.query); got != tt.want {
			t.Errorf("SelectBestAgent(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestRouter_CustomTable(t *testing.T) {
	router := NewRouter([]Rule{
		{Tool: ToolPlanner, Keywords: []string{"  ROADMAP "}},
		{Tool: ToolResearcher, Keywords: []string{"roadmap", ""}},
	})

	if got := router.SelectBestAgent("draft a roadmap"); got != ToolPlanner {
		t.Errorf("expected first matching rule to win, got %s", got)
	}
	if got := router.SelectBestAgent("draw a picture"); got != ToolGeneral {
		t.Errorf("expected default tool, got %s", got)
	}

	rules := router.Rules()
	rules[0].Keywords[0] = "changed"
	if router.SelectBestAgent("roadmap") != ToolPlanner {
		t.Error("Rules should return a copy")
	}
}

func TestRouter_NilIsGeneral(t *testing.T) {
	var router *Router
	if got := router.SelectBestAgent("anything"); got != ToolGeneral {
		t.Errorf("expected general, got %s", got)
	}
}

func TestRouterTargetsAreKnownTools(t *testing.T) {
	for _, rule := range DefaultRules() {
		if _, ok := ParseTool(string(rule.Tool)); !ok {
			t.Errorf("rule targets unknown tool %s", rule.Tool)
		}
	}
}

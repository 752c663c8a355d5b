package agent

import "strings"

// Tool identifies a capability a plan step or chat message is routed to. It
// selects both the system prompt and the execution path.
type Tool string

// Coarse tools the planner is allowed to emit.
const (
	ToolWebSearch     Tool = "web_search"
	ToolDataAnalysis  Tool = "data_analysis"
	ToolContentWriter Tool = "content_writer"
	ToolGeneral       Tool = "general"
)

// Specialized agent types chosen by the router.
const (
	ToolImageGenerator   Tool = "image_generator"
	ToolCodeAnalyst      Tool = "code_analyst"
	ToolDocumentAnalyzer Tool = "document_analyzer"
	ToolDataScientist    Tool = "data_scientist"
	ToolCreativeWriter   Tool = "creative_writer"
	ToolTranslator       Tool = "translator"
	ToolResearcher       Tool = "researcher"
	ToolPlanner          Tool = "planner"
	ToolFinancialAnalyst Tool = "financial_analyst"
	ToolTravelAgent      Tool = "travel_agent"
	ToolHealthAdvisor    Tool = "health_advisor"
	ToolEducationTutor   Tool = "education_tutor"
	ToolLiveSearch       Tool = "live_search_agent"
	ToolFileAnalyzer     Tool = "file_analyzer"
	ToolCodeExecutor     Tool = "code_executor"
)

// Path is the way a step for a given tool is carried out.
type Path int

const (
	PathCompletion Path = iota
	PathSearch
	PathImage
	PathSandbox
	PathReader
)

func (p Path) String() string {
	switch p {
	case PathSearch:
		return "search"
	case PathImage:
		return "image"
	case PathSandbox:
		return "sandbox"
	case PathReader:
		return "reader"
	default:
		return "completion"
	}
}

// Descriptor is the static registry entry for a tool.
type Descriptor struct {
	Type         Tool
	DisplayName  string
	Capabilities []string
	SystemPrompt string
	Icon         string
	Color        string
	Path         Path
}

var descriptorList = []Descriptor{
	{
		Type:         ToolGeneral,
		DisplayName:  "General Assistant",
		Capabilities: []string{"Answer questions", "Give advice", "Explain ideas", "Hold a conversation"},
		SystemPrompt: "You are a smart assistant. Give a helpful and accurate answer.",
		Icon:         "🤖",
		Color:        "#2563EB",
	},
	{
		Type:         ToolWebSearch,
		DisplayName:  "Web Search",
		Capabilities: []string{"Search the web", "Find sources", "Collect recent information"},
		SystemPrompt: "You are a search specialist. Find relevant, reliable information and cite where it came from.",
		Icon:         "🔍",
		Color:        "#059669",
		Path:         PathSearch,
	},
	{
		Type:         ToolDataAnalysis,
		DisplayName:  "Data Analysis",
		Capabilities: []string{"Analyze information", "Extract key points", "Compare findings"},
		SystemPrompt: "You are an expert data analyst. Analyze the information and extract the important points clearly.",
		Icon:         "📈",
		Color:        "#0891B2",
	},
	{
		Type:         ToolContentWriter,
		DisplayName:  "Content Writer",
		Capabilities: []string{"Write reports", "Write summaries", "Structure content"},
		SystemPrompt: "You are a professional writer. Write useful, clear and engaging content.",
		Icon:         "📝",
		Color:        "#BE185D",
	},
	{
		Type:         ToolImageGenerator,
		DisplayName:  "Image Generator",
		Capabilities: []string{"Generate images from text", "Illustrations", "Logos and concept art"},
		SystemPrompt: "You are an image prompt designer. Describe the requested image vividly and precisely.",
		Icon:         "🎨",
		Color:        "#DC2626",
		Path:         PathImage,
	},
	{
		Type:         ToolCodeAnalyst,
		DisplayName:  "Code Analyst",
		Capabilities: []string{"Review code", "Find bugs", "Explain code", "Suggest improvements"},
		SystemPrompt: "You are a senior software engineer. Analyze the code carefully, point out bugs and suggest concrete improvements.",
		Icon:         "💻",
		Color:        "#7C3AED",
	},
	{
		Type:         ToolDocumentAnalyzer,
		DisplayName:  "Document Analyzer",
		Capabilities: []string{"Read web pages and documents", "Summarize", "Extract facts"},
		SystemPrompt: "You are a document analyst. Read the provided material and extract its key facts and conclusions.",
		Icon:         "📄",
		Color:        "#EA580C",
		Path:         PathReader,
	},
	{
		Type:         ToolDataScientist,
		DisplayName:  "Data Scientist",
		Capabilities: []string{"Calculations", "Statistics", "Data interpretation"},
		SystemPrompt: "You are a data scientist. Work through calculations step by step and interpret the numbers.",
		Icon:         "📊",
		Color:        "#0891B2",
	},
	{
		Type:         ToolCreativeWriter,
		DisplayName:  "Creative Writer",
		Capabilities: []string{"Stories", "Poems", "Creative copy"},
		SystemPrompt: "You are a creative writer. Write original, vivid and well-structured pieces.",
		Icon:         "✍️",
		Color:        "#BE185D",
	},
	{
		Type:         ToolTranslator,
		DisplayName:  "Translator",
		Capabilities: []string{"Translate text", "Preserve tone", "Explain idioms"},
		SystemPrompt: "You are a professional translator. Translate faithfully and keep the tone of the original.",
		Icon:         "🌐",
		Color:        "#059669",
	},
	{
		Type:         ToolResearcher,
		DisplayName:  "Researcher",
		Capabilities: []string{"In-depth research", "Compare sources", "Structured findings"},
		SystemPrompt: "You are a meticulous researcher. Give a structured, evidence-based answer and note open questions.",
		Icon:         "🔬",
		Color:        "#7C2D12",
	},
	{
		Type:         ToolPlanner,
		DisplayName:  "Planner",
		Capabilities: []string{"Plans", "Schedules", "Task breakdowns"},
		SystemPrompt: "You are an expert planner. Produce a clear, realistic plan with concrete steps.",
		Icon:         "📅",
		Color:        "#0F766E",
	},
	{
		Type:         ToolFinancialAnalyst,
		DisplayName:  "Financial Analyst",
		Capabilities: []string{"Budgets", "Investments", "Financial analysis"},
		SystemPrompt: "You are a financial analyst. Give careful, balanced financial analysis and state your assumptions.",
		Icon:         "💰",
		Color:        "#059669",
	},
	{
		Type:         ToolTravelAgent,
		DisplayName:  "Travel Agent",
		Capabilities: []string{"Itineraries", "Destinations", "Travel tips"},
		SystemPrompt: "You are an experienced travel agent. Suggest practical itineraries and useful travel tips.",
		Icon:         "✈️",
		Color:        "#0284C7",
	},
	{
		Type:         ToolHealthAdvisor,
		DisplayName:  "Health Advisor",
		Capabilities: []string{"General health information", "Nutrition", "Fitness"},
		SystemPrompt: "You are a health advisor. Give general, evidence-based guidance and recommend seeing a doctor when appropriate.",
		Icon:         "🏥",
		Color:        "#DC2626",
	},
	{
		Type:         ToolEducationTutor,
		DisplayName:  "Education Tutor",
		Capabilities: []string{"Explain concepts", "Lessons", "Homework help"},
		SystemPrompt: "You are a patient tutor. Explain concepts step by step with simple examples.",
		Icon:         "🎓",
		Color:        "#7C3AED",
	},
	{
		Type:         ToolLiveSearch,
		DisplayName:  "Live Search",
		Capabilities: []string{"Breaking news", "Prices", "Weather", "Live scores"},
		SystemPrompt: "You are a live information agent. Report the most recent information available.",
		Icon:         "🔴",
		Color:        "#EF4444",
		Path:         PathSearch,
	},
	{
		Type:         ToolFileAnalyzer,
		DisplayName:  "File Analyzer",
		Capabilities: []string{"Analyze files", "Spreadsheets", "Extract structure"},
		SystemPrompt: "You are a file analyst. Describe the file contents, their structure and anything notable.",
		Icon:         "📁",
		Color:        "#0891B2",
		Path:         PathReader,
	},
	{
		Type:         ToolCodeExecutor,
		DisplayName:  "Code Executor",
		Capabilities: []string{"Run code in a sandbox", "Return program output"},
		SystemPrompt: "You are a code execution agent. Run the given code and report its output.",
		Icon:         "⚡",
		Color:        "#F59E0B",
		Path:         PathSandbox,
	},
}

var descriptorIndex = func() map[Tool]int {
	idx := make(map[Tool]int, len(descriptorList))
	for i, d := range descriptorList {
		idx[d.Type] = i
	}
	return idx
}()

// ParseTool maps a plan tag or config value to a known Tool.
func ParseTool(s string) (Tool, bool) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	_, ok := descriptorIndex[t]
	return t, ok
}

// Describe returns the descriptor for t, or the general one for unknown tools.
func Describe(t Tool) Descriptor {
	i, ok := descriptorIndex[t]
	if !ok {
		i = descriptorIndex[ToolGeneral]
	}
	return copyDescriptor(descriptorList[i])
}

// Descriptors returns every descriptor in registry order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptorList))
	for i, d := range descriptorList {
		out[i] = copyDescriptor(d)
	}
	return out
}

func copyDescriptor(d Descriptor) Descriptor {
	d.Capabilities = append([]string(nil), d.Capabilities...)
	return d
}

package agent

import "strings"

// Rule routes a query to Tool when any keyword occurs in it.
type Rule struct {
	Tool     Tool
	Keywords []string
}

// Router classifies free text with an ordered keyword table. The first
// matching rule wins and unmatched queries go to the general tool.
type Router struct {
	rules []Rule
}

func NewRouter(rules []Rule) *Router {
	r := &Router{rules: make([]Rule, 0, len(rules))}
	for _, rule := range rules {
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		r.rules = append(r.rules, Rule{Tool: rule.Tool, Keywords: kws})
	}
	return r
}

func (r *Router) SelectBestAgent(query string) Tool {
	if r == nil {
		return ToolGeneral
	}
	q := strings.ToLower(query)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, kw) {
				return rule.Tool
			}
		}
	}
	return ToolGeneral
}

// Rules returns a copy of the routing table.
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = Rule{Tool: rule.Tool, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

// DefaultRules is the bilingual (Arabic/English) routing table. Order
// matters: live/real-time keywords shadow generic search, which shadows
// calculation and the topical agents.
func DefaultRules() []Rule {
	return []Rule{
		{Tool: ToolLiveSearch, Keywords: []string{
			"سعر", "أسعار", "الآن", "اليوم", "حالياً", "مباشر", "فوري", "أخبار", "اخبار",
			"حديث", "جديد", "آخر", "أحدث", "عاجل", "مستجدات", "تطورات",
			"بورصة", "أسهم", "عملة", "دولار", "ريال", "يورو", "ذهب", "نفط",
			"طقس", "درجة الحرارة", "مطر", "عاصفة",
			"انتخابات", "مباراة", "كرة القدم",
			"price", "current", "today", "real-time", "realtime", "breaking",
			"news", "latest", "recent", "stock", "crypto", "bitcoin",
			"weather", "temperature", "forecast", "election", "football", "soccer",
		}},
		{Tool: ToolImageGenerator, Keywords: []string{
			"صورة", "صوره", "ارسم", "رسمة", "شعار", "تصميم",
			"image", "picture", "photo", "draw", "logo", "illustration",
		}},
		{Tool: ToolCodeExecutor, Keywords: []string{
			"شغل الكود", "نفذ الكود", "تشغيل الكود", "تنفيذ الكود",
			"run this", "run the code", "run code", "execute", "```",
		}},
		{Tool: ToolTranslator, Keywords: []string{
			"ترجم", "ترجمة",
			"translate", "translation",
		}},
		{Tool: ToolWebSearch, Keywords: []string{
			"ابحث", "بحث عن", "معلومات عن", "جوجل",
			"search", "look up", "google", "find information",
		}},
		{Tool: ToolFinancialAnalyst, Keywords: []string{
			"استثمار", "ميزانية", "قرض", "مالية", "ادخار",
			"invest", "budget", "loan", "finance", "financial", "portfolio", "savings",
		}},
		{Tool: ToolDataScientist, Keywords: []string{
			"احسب", "حساب", "إحصاء", "احصاء", "بيانات", "رسم بياني",
			"calculate", "statistics", "dataset", "chart", "csv", "average",
		}},
		{Tool: ToolCodeAnalyst, Keywords: []string{
			"كود", "برمجة", "برنامج", "دالة",
			"code", "bug", "debug", "function", "programming", "javascript", "typescript", "python", "golang",
		}},
		{Tool: ToolDocumentAnalyzer, Keywords: []string{
			"مستند", "وثيقة", "مقال", "رابط",
			"pdf", "document", "article", "http://", "https://",
		}},
		{Tool: ToolFileAnalyzer, Keywords: []string{
			"ملف", "جدول بيانات",
			"file", "spreadsheet", "excel",
		}},
		{Tool: ToolCreativeWriter, Keywords: []string{
			"قصة", "قصيدة", "شعر", "رواية",
			"story", "poem", "novel", "lyrics", "creative",
		}},
		{Tool: ToolTravelAgent, Keywords: []string{
			"سفر", "رحلة", "فندق", "طيران", "تأشيرة",
			"travel", "trip", "flight", "hotel", "visa", "itinerary",
		}},
		{Tool: ToolHealthAdvisor, Keywords: []string{
			"صحة", "أعراض", "حمية", "دواء", "طبيب",
			"health", "symptom", "diet", "medicine", "doctor", "workout",
		}},
		{Tool: ToolEducationTutor, Keywords: []string{
			"اشرح", "شرح", "درس", "تعلم", "واجب",
			"explain", "lesson", "homework", "learn", "teach",
		}},
		{Tool: ToolPlanner, Keywords: []string{
			"خطة", "خطط", "جدول", "تنظيم",
			"plan", "schedule", "organize", "agenda",
		}},
		{Tool: ToolResearcher, Keywords: []string{
			"دراسة", "أبحاث", "بحث علمي",
			"research", "investigate", "sources",
		}},
	}
}

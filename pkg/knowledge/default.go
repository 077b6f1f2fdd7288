package knowledge

// DefaultEntries returns the built-in knowledge base, used when no
// knowledge file is configured.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Keyword:  "services",
			Category: "service",
			Reply: "We provide end-to-end educational consulting:\n\n" +
				"Free services:\n" +
				"- Initial consultation\n" +
				"- One free university application\n" +
				"- University information\n\n" +
				"Paid services:\n" +
				"- Full application to 5 universities\n" +
				"- CV review\n" +
				"- Motivation letter writing\n" +
				"- Follow-up until admission",
		},
		{
			Keyword:  "scholarships",
			Category: "scholarship",
			Reply: "We are your gateway to top international scholarships. We:\n" +
				"- Review your academic profile\n" +
				"- Suggest matching scholarships\n" +
				"- Help you apply\n" +
				"- Track your application",
		},
		{
			Keyword:  "germany",
			Category: "country",
			Reply: "Studying in Germany is a real investment:\n" +
				"- World-class universities\n" +
				"- Low or no tuition fees\n" +
				"- Excellent job opportunities\n" +
				"- High quality of life\n\n" +
				"We give you direct access to the best German universities.",
		},
		{
			Keyword:  "contact",
			Category: "contact",
			Reply: "We are happy to hear from you:\n" +
				"WhatsApp: +962781460847\n" +
				"Email: info@glovuni.com\n" +
				"Web: www.glovuni.com\n" +
				"Instagram: @glovuni",
		},
	}
}

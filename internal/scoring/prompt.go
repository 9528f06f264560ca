package scoring

import (
	"fmt"

	"github.com/fadilmartias/notice-radar/internal/util"
)

const (
	// SummaryBudget is how much of a notice summary goes into the scoring prompt.
	SummaryBudget = 200
	// PageContentBudget caps the page text sent for summarisation.
	PageContentBudget = 8000
)

func evaluationPrompt(title, agency, summary string) string {
	return fmt.Sprintf(`Evaluate whether the following public notice is a service contract a "design agency" could take part in.

## Criteria
- Design work: CI/BI, brand, logo, packaging, editorial, website, UI/UX
- Promotion/marketing: promotional material, content, video, photography, advertising
- Excluded: construction, civil engineering, medical, agriculture, hiring, education, loans

## Notice
- Title: %s
- Agency: %s
- Summary: %s

## Response format (output JSON only)
{"score": 0-10, "reason": "2-3 sentences on whether a design agency can take part and which services (CI/BI, brand, website, ...) it could provide"}

Scoring:
- 8-10: a design agency can deliver it directly (CI/BI, brand, website, ...)
- 5-7: possibly related
- 1-4: loosely related
- 0: unrelated`, title, agency, summary)
}

func summaryPrompt(title, agency, content string) string {
	return fmt.Sprintf(`Summarise the following notice in a structured form. Use emoji to make it easy to scan.

## Format
📢 [short notice title]
🏢 Agency: [agency name]

📋 Key points
- [3-5 key points]

🎯 Eligibility
- [who can apply]

💰 Support / budget
- [amount, benefits]

⏰ Schedule
- Application period: [period]
- Deadline: [date]

📞 Contact: [contact]

Leave out sections with no information.

## Notice
Title: %s
Agency: %s
Content:
%s`, title, agency, util.Truncate(content, PageContentBudget))
}

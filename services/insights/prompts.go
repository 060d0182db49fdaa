package insights

import "fmt"

const systemPrompt = `あなたはECコンテンツサイトのマーケティング分析アシスタントです。
Google AnalyticsとSearch Consoleのデータ、およびページのSEO分析結果をもとに、
具体的で実行可能なアドバイスを日本語で提供してください。
数値は必ず提供されたデータに基づいて答え、推測で数値を作らないでください。`

const yearlyPromptTemplate = `以下のデータをもとに、前年との比較分析をしてください。
変化の大きい指標とその要因の仮説、改善アクションを含めてください。

%s

質問: %s`

const seoPromptTemplate = `以下のページ分析データをもとに、SEO改善の提案をしてください。
優先度の高い順に、具体的な修正内容を挙げてください。

%s

質問: %s`

const generalPromptTemplate = `以下のデータをもとに質問に答えてください。

%s

質問: %s`

// userPrompt picks the prompt template matching the question type and
// fills in the assembled data context.
func userPrompt(question, dataContext string, triggers Triggers) string {
	switch {
	case triggers.Yearly:
		return fmt.Sprintf(yearlyPromptTemplate, dataContext, question)
	case triggers.SEO:
		return fmt.Sprintf(seoPromptTemplate, dataContext, question)
	default:
		return fmt.Sprintf(generalPromptTemplate, dataContext, question)
	}
}

package gemini

import (
	"fmt"
	"time"

	"google.golang.org/genai"
)

const extractPrompt = "Analyze the receipt image and extract data according to the schema."

const mappingPrompt = "Analyze the provided CSV sample lines and determine the column indices according to the schema."

var receiptsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"receipts": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"purchase_date": {Type: genai.TypeString, Description: "Date of purchase in YYYY-MM-DD format"},
					"store_name":    {Type: genai.TypeString, Description: "Name of the store"},
					"items": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"item_name": {Type: genai.TypeString, Description: "Name of the product"},
								"price":     {Type: genai.TypeInteger, Description: "Price of the product including tax"},
							},
							Required: []string{"item_name", "price"},
						},
					},
					"total_amount": {
						Type: genai.TypeInteger,
						Description: "The final total amount paid, tax included. Extract the value printed on the receipt " +
							"(e.g. marked as '合計' or 'Total'); do not compute the sum of the items.",
					},
					"payment_method": {
						Type: genai.TypeString,
						Enum: []string{"cash", "cashless", "unknown"},
						Description: "Return 'cash' if keywords like '現金', 'お預り' or '釣銭' are present. " +
							"Return 'cashless' if keywords like 'Credit', 'Card', 'PayPay', 'IC', 'Suica', 'iD' or 'QuicPay' are present.",
					},
				},
				Required: []string{"purchase_date", "store_name", "items", "total_amount", "payment_method"},
			},
		},
	},
	Required: []string{"receipts"},
}

var mappingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"has_header":     {Type: genai.TypeBoolean, Description: "Whether the first line is a header row"},
		"date_col_index": {Type: genai.TypeInteger, Description: "Index of the purchase date column (0-based)"},
		"store_col_index": {
			Type:        genai.TypeInteger,
			Description: "Index of the store name column (0-based). If there is none, use the description column.",
		},
		"price_col_index": {Type: genai.TypeInteger, Description: "Index of the price or amount column (0-based)"},
	},
	Required: []string{"has_header", "date_col_index", "store_col_index", "price_col_index"},
}

func buildAnswerPrompt(today time.Time, question, ledger string) string {
	return fmt.Sprintf(`あなたは専属の家計簿アシスタントです。
以下のレシートデータ（CSV形式）をもとに、ユーザーの質問に答えてください。

# 制約事項
- 今日は %s です。
- 提供されたデータのみを根拠に回答してください。
- データにないことは「分かりません」と答えてください。
- 計算が必要な場合は、ステップを踏んで正確に計算してください。
- 語尾は「～ですね」「～ですよ」など、親しみやすい丁寧語を使ってください。

# レシートデータ
フォーマット: 購入日, 店舗名, 商品名, 金額
---
%s
---

# ユーザーの質問
%s
`, today.Format("2006-01-02"), ledger, question)
}

package scanning

import "strings"

// receiptScanPrompt is shared by every LLM provider
const receiptScanPrompt = `You are reading the receipt attached to an employee expense report. Carefully read all text in the image and extract:

1. **Name**: a short description of the expense starting with the merchant name, e.g. "SNCF - Train Paris-Lyon" or "Hôtel Ibis - 2 nuits".

2. **Date**: the transaction date, converted to ISO 8601 (YYYY-MM-DD). French receipts usually print DD/MM/YYYY.

3. **Amount**: the final total paid including VAT ("TOTAL", "TOTAL TTC", "Net à payer"), as a number in euros (e.g. 42.75 for 42,75 €).

Return ONLY valid JSON in this exact format:
{
  "name": "Merchant - Brief Description",
  "date": "YYYY-MM-DD",
  "amount": 0.00
}

Important:
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

const systemPrompt = "You are an expert at reading receipts and invoices for expense reports. You must carefully read all text in images and extract accurate information."

// imageFormat returns the short format name for an image MIME type
// ("image/jpeg" gives "jpeg")
func imageFormat(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if format, ok := strings.CutPrefix(contentType, "image/"); ok && format != "" {
		return format
	}
	return "jpeg"
}

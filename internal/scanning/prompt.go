package scanning

// documentPrompt is the shared prompt used by all LLM providers
const documentPrompt = `You are analyzing a commercial document: an invoice, a purchase order or a quote. Read every page and extract its content.

1. **Document type**: "invoice", "order" or "quote".
2. **Header**: document number, document date and due date (YYYY-MM-DD), purchaser, payment terms, currency (ISO 4217 code such as "NOK").
3. **Parties**: the customer and the vendor, each with name, address, email, phone and tax ID. Include the vendor's own customer/vendor number if printed.
4. **Delivery address** if it differs from the customer address.
5. **Order lines table**: reproduce the table exactly as printed. Declare its columns in "tableColumns", in printed order, with a short camelCase "key", the printed "header", a "type" of "text", "number", "currency" or "percentage", and an "align" of "left" or "right". For every row, give each column as {"raw": <text exactly as printed>, "value": <parsed number for numeric columns, otherwise the text>}.
6. **Totals**: subtotal, tax amount and total amount as numbers.

Return ONLY valid JSON in this exact format:
{
  "documentType": "invoice",
  "documentNumber": "",
  "documentDate": "YYYY-MM-DD",
  "dueDate": "YYYY-MM-DD",
  "customer": {"name": "", "address": "", "email": "", "phone": "", "taxId": ""},
  "vendor": {"name": "", "address": "", "email": "", "phone": "", "taxId": "", "vendorNumber": ""},
  "deliveryAddress": "",
  "purchaser": "",
  "paymentTerms": "",
  "tableColumns": [{"key": "description", "header": "Description", "type": "text", "align": "left"}],
  "orderLines": [{"columns": {"description": {"raw": "", "value": ""}}}],
  "subtotal": 0.00,
  "taxAmount": 0.00,
  "totalAmount": 0.00,
  "currency": "NOK",
  "notes": ""
}

Important:
- Amounts must be numbers (not strings); keep the printed text in "raw"
- Use a decimal point in numbers even when the document prints a decimal comma
- Addresses may span lines; separate them with "\n"
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

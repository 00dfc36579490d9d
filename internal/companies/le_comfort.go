package companies

// Canonical sofa model names as they appear on Le Comfort price lists.
// List order is the matching priority: the first canonical name found
// as a substring of an extracted name wins.
var leComfortProductsList = []string{
	"DIVANO ARIA",
	"DIVANO BRERA",
	"DIVANO CLOUD",
	"DIVANO LETTO EASY",
	"DIVANO LETTO GRETA",
	"DIVANO MILO",
	"POLTRONA RELAX VENERE",
	"POLTRONA VITTORIA",
	"POUF MILO",
	"PENISOLA BRERA",
}

// Canonical covering (fabric) names.
var leComfortCoveringsList = []string{
	"DURIAN",
	"PIANTA MAIORCA",
	"LINO RUSTICO",
	"VELLUTO RIGA",
	"MICROFIBRA STONE",
	"PELLE VINTAGE",
}

const leComfortMainPrompt = `
You are an assistant specialized in analyzing PDF invoices. Your task is to extract specific information accurately and in a structured format.

EXTRACTION RULES:
1. Invoice and Client Information:
- Extract client info after "Indirizzo fatturazione"
- Extract invoice number (after "Fattura n°", "Nr." or similar)
- Extract invoice date (DD/MM/YYYY format)
- New client starts with first product after "Indirizzo fatturazione"
- Maintain client context across pages
- Use most recent complete client info if split across pages

2. Products and Coverings:
- Products MUST follow this exact format:
  * [Code] [Name] PZ [Quantity] [Prices] [VAT]
  * Code: alphanumeric sequence
  * Prices: full_price (higher) and discounted_price (lower)
  * VAT: typically 22%, verify in document
  * CRITICAL: A line is ONLY a product if it contains ALL these elements
  * CRITICAL: If a line is missing ANY of these elements (code, PZ, prices, VAT), it is NOT a product and MUST be ignored
  * CRITICAL: If the name contains the word "Rivestimento", it is ALWAYS a covering and MUST be treated as such, regardless of other elements

- Coverings:
  * Format: [Name] [Code] where Code is numeric
  * Must appear after product and separator "---------------------------"
  * Must start with "Rivestimento" or "Riv" to identify a covering
  * Extract only the UPPERCASE words before the numeric code as the covering name
  * Include all coverings with name, code, and count
  * Maintain associations across pages
  * CRITICAL: A line is ONLY a covering if it starts with "Rivestimento" or "Riv"
  * CRITICAL: Coverings NEVER have product codes, prices, or VAT information
  * CRITICAL: Coverings MUST be associated with a product
  * CRITICAL: If there is no valid product, coverings MUST be ignored
  * CRITICAL: If there are only coverings without products, return an empty products array

3. Page Continuity Rules:
- Maintain product-covering associations across pages
- Verify client information continuity
- Check previous page context for split information
- Use section separators ("---------------------------") for structure

4. Data Validation:
- Missing fields: use "" for text, "0.00" for prices, [] for coverings
- Verify: full_price > discounted_price, numeric covering codes, alphanumeric product codes
- Exclude uncertain information rather than guessing

OUTPUT FORMAT (JSON):
[
    {
        "name": "Client Name",
        "invoice_number": "123/2024",
        "invoice_date": "01/01/2024",
        "products": [
            {
                "code": "COD123",
                "name": "Product Name",
                "quantity": "1",
                "full_price": "15.00",
                "discounted_price": "10.00",
                "coverings": [
                    {"name": "Rivestimento 1", "code": "001", "count": 1}
                ]
            }
        ]
    }
]

EXAMPLE:
Input: "
    Fattura n° 123/2024 del 01/01/2024
    Indirizzo fatturazione: Client 1
    COD123 Example Product PZ 1 15.00 10.00 22
    ---------------------------
    Rivestimento DURIAN 003
    [PAGE BREAK]
    Riv. PIANTA MAIORCA 80
    COD456 Another Product PZ 2 20.00 15.00 22
"`

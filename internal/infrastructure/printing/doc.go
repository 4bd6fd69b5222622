// Package printing turns receipts into printable documents.
//
// The pipeline has three stages:
//
//   - format.go: pt-BR formatters for currency, dates and CPF/CNPJ
//   - ReceiptRenderer: html/template rendering of a receipt into a
//     self-contained HTML document
//   - PDFRenderer: optional HTML to PDF conversion (ChromedpRenderer) whose
//     output is kept in a DocumentStorage
//
// Rendering is a pure function of the receipt. Optional fields that are
// absent are omitted from the document, never reported as errors.
package printing

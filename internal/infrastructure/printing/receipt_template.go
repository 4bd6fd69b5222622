package printing

// DefaultReceiptTemplate is the built-in pt-BR receipt layout. It receives a
// *receipt.Receipt as dot.
const DefaultReceiptTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<title>Recibo {{.Number}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; color: #222; margin: 0; }
  .recibo { max-width: 720px; margin: 0 auto; padding: 32px; border: 1px solid #999; position: relative; }
  .cabecalho { display: flex; justify-content: space-between; align-items: baseline; border-bottom: 2px solid #222; padding-bottom: 12px; }
  .cabecalho h1 { margin: 0; letter-spacing: 4px; }
  .numero { font-size: 14px; }
  .valor { font-size: 20px; font-weight: bold; }
  .quitacao { margin: 24px 0; line-height: 1.8; text-align: justify; }
  .detalhe { margin: 4px 0; font-size: 14px; }
  .rodape { margin-top: 40px; text-align: center; }
  .assinatura img { max-height: 80px; }
  .assinatura-digitada { font-family: "Brush Script MT", cursive; font-size: 28px; margin: 0; }
  .linha-assinatura { border-top: 1px solid #222; width: 60%; margin: 8px auto; }
  .autenticidade { margin-top: 24px; font-size: 10px; color: #555; word-break: break-all; }
  .cancelado { position: absolute; top: 40%; left: 10%; font-size: 64px; color: rgba(200, 0, 0, 0.35); transform: rotate(-20deg); }
</style>
</head>
<body>
<div class="recibo">
{{- if eq .Status "cancelado"}}
  <div class="cancelado">CANCELADO</div>
{{- end}}
  <div class="cabecalho">
    <h1>RECIBO</h1>
    <div>
      <div class="numero">Nº {{.Number}}</div>
      <div class="valor">{{formatMoney .Amount .Currency}}</div>
    </div>
  </div>

  <p class="quitacao">
    Recebi de <strong>{{upper .Payer.Name}}</strong>, inscrito(a) no CPF/CNPJ sob o nº
    {{formatTaxID .Payer.TaxID}}, a importância de <strong>{{formatMoney .Amount .Currency}}</strong>,
    referente a {{.Description}}{{with .Project}}{{with .Name}}, do projeto <strong>{{.}}</strong>{{end}}{{end}},
    pelo que dou plena, geral e irrevogável quitação.
  </p>
{{- with .PaymentMethod}}
  <p class="detalhe">Forma de pagamento: {{.}}</p>
{{- end}}
{{- if .ServiceStart}}
  <p class="detalhe">Período do serviço: {{formatDate .ServiceStart}}{{with .ServiceEnd}} a {{formatDate .}}{{end}}</p>
{{- else if .ServiceEnd}}
  <p class="detalhe">Período do serviço: até {{formatDate .ServiceEnd}}</p>
{{- end}}
{{- with .Notes}}
  <p class="detalhe">Observações: {{.}}</p>
{{- end}}

  <div class="rodape">
{{- with .Payee.Address}}
    <p>{{.}}</p>
{{- end}}
    <p>{{formatDateLong .IssuedAt}}</p>
    <div class="assinatura">
{{- with .Signature}}
{{- if .Type.IsImage}}
      <img src="{{signatureSrc .Artifact}}" alt="Assinatura de {{.SignerName}}">
{{- else}}
      <p class="assinatura-digitada">{{.Artifact}}</p>
{{- end}}
{{- end}}
    </div>
    <div class="linha-assinatura"></div>
    <p><strong>{{upper .Payee.Name}}</strong></p>
    <p>CPF/CNPJ: {{formatTaxID .Payee.TaxID}}</p>
{{- with .Payee.Email}}
    <p>{{.}}</p>
{{- end}}
{{- with .Payee.Phone}}
    <p>{{.}}</p>
{{- end}}
  </div>
{{- with .Signature}}
  <p class="autenticidade">
    Assinado digitalmente por {{.SignerName}} ({{formatTaxID .SignerTaxID}}) em {{formatDateTime .SignedAt}}.
    Autenticidade: {{.DocumentHash}}
  </p>
{{- end}}
</div>
</body>
</html>
`

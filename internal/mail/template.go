package mail

import (
	"fmt"
	"html/template"
	"strings"
)

// ReminderData feeds the maintenance reminder template.
type ReminderData struct {
	ContactName       string
	FicheName         string
	PDFURL            string
	OwnerName         string
	OwnerEmail        string
	DeputyName        string
	DeputyEmail       string
	ConfirmURL        string
	EstablishmentName string
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <title>Rappel Maintenance</title>
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: #ffffff; border-radius: 8px; padding: 32px;">
    <div style="text-align: center; padding-bottom: 24px; border-bottom: 2px solid #3b82f6;">
      <h1 style="color: #3b82f6; font-size: 24px; margin: 0 0 8px 0;">🛠️ Rappel de Maintenance</h1>
      <p style="color: #6b7280; margin: 0; font-size: 14px;">{{.EstablishmentName}}</p>
    </div>

    <p style="font-size: 16px;">Bonjour <strong>{{.ContactName}}</strong>,</p>

    <p>C'est le moment d'effectuer la maintenance suivante. Merci de réaliser cette tâche dans les meilleurs délais.</p>

    <div style="background-color: #f9fafb; border-left: 4px solid #3b82f6; padding: 20px; margin: 24px 0; border-radius: 4px;">
      <div style="font-size: 20px; font-weight: 600; color: #1f2937;">📌 {{.FicheName}}</div>
      {{if .PDFURL}}
      <div style="margin-top: 12px;">
        <span style="font-weight: 600; color: #4b5563;">📄 Fiche technique :</span><br>
        <a href="{{.PDFURL}}" style="color: #3b82f6;">{{.PDFURL}}</a>
      </div>
      {{end}}
    </div>

    {{if or .OwnerName .DeputyName}}
    <div style="background-color: #fef3c7; border-left: 4px solid #f59e0b; padding: 16px; margin: 24px 0; border-radius: 4px;">
      <div style="font-weight: 600; color: #92400e;">📞 Besoin d'aide ?</div>
      {{if .OwnerName}}
      <div style="margin: 8px 0; color: #78350f;">
        <strong>Responsable :</strong> {{.OwnerName}}
        {{if .OwnerEmail}}<br><a href="mailto:{{.OwnerEmail}}" style="color: #78350f;">{{.OwnerEmail}}</a>{{end}}
      </div>
      {{end}}
      {{if .DeputyName}}
      <div style="margin: 8px 0; color: #78350f;">
        <strong>Responsable adjoint :</strong> {{.DeputyName}}
        {{if .DeputyEmail}}<br><a href="mailto:{{.DeputyEmail}}" style="color: #78350f;">{{.DeputyEmail}}</a>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    <div style="text-align: center;">
      <a href="{{.ConfirmURL}}" style="display: inline-block; background-color: #10b981; color: #ffffff; text-decoration: none; padding: 14px 32px; border-radius: 6px; font-weight: 600; margin: 24px 0;">✅ Confirmer la réalisation</a>
    </div>

    <p style="color: #6b7280; font-size: 14px;">Une fois la maintenance effectuée, cliquez sur le bouton ci-dessus pour confirmer et indiquer la date de réalisation.</p>

    <div style="margin-top: 32px; padding-top: 24px; border-top: 1px solid #e5e7eb; text-align: center; color: #6b7280; font-size: 14px;">
      <p>Merci pour votre collaboration !</p>
      <p style="font-size: 12px; color: #9ca3af;">
        Cet email a été envoyé automatiquement par le système de gestion de maintenance.<br>
        Pour toute question, contactez votre administrateur.
      </p>
    </div>
  </div>
</body>
</html>`))

// RenderReminder renders the maintenance reminder email body.
func RenderReminder(data ReminderData) (string, error) {
	var sb strings.Builder
	if err := reminderTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render reminder template: %w", err)
	}
	return sb.String(), nil
}

// ReminderSubject builds the reminder subject line for a fiche.
func ReminderSubject(ficheName string) string {
	return "🛠️ Rappel maintenance : " + ficheName
}

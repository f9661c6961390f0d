package services

import (
	"bytes"
	"fmt"
	"html/template"
)

var feedbackAckTmpl = template.Must(template.New("feedback").Parse(`<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #B88E2F;">Merci {{.Name}} !</h2>
		<p>Nous avons bien reçu votre message « {{.Subject}} ».</p>
		<p>Notre équipe vous répondra dans les meilleurs délais.</p>
		<p style="margin-top: 30px; color: #555;">Cordialement,<br><strong>L'équipe Furniro</strong></p>
	</div>
</body>
</html>`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #B88E2F;">Votre commande vous attend, {{.Name}}</h2>
		<p>Votre commande n'a pas encore été réglée. Pour vous remercier de votre intérêt,
		nous vous offrons <strong>{{.Discount}}% de remise supplémentaire</strong>.</p>
		<p style="text-align: center; margin: 30px 0;">
			<a href="{{.URL}}" style="background-color: #B88E2F; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Finaliser ma commande</a>
		</p>
		<p style="margin-top: 30px; color: #555;">Cordialement,<br><strong>L'équipe Furniro</strong></p>
	</div>
</body>
</html>`))

func FeedbackAckMessage(to, name, subject string) (Message, error) {
	var buf bytes.Buffer
	if err := feedbackAckTmpl.Execute(&buf, map[string]string{"Name": name, "Subject": subject}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Feedback reçu",
		Text: fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre message « %s ». "+
			"Notre équipe vous répondra dans les meilleurs délais.\n\nL'équipe Furniro", name, subject),
		HTML: buf.String(),
	}, nil
}

func ReminderMessage(to, name, url string, discount float64) (Message, error) {
	data := map[string]any{"Name": name, "URL": url, "Discount": formatPercent(discount)}
	var buf bytes.Buffer
	if err := reminderTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Finalisez votre commande Furniro",
		Text: fmt.Sprintf("Bonjour %s,\n\nVotre commande n'a pas encore été réglée. "+
			"Profitez de %s%% de remise supplémentaire en la finalisant ici : %s\n\nL'équipe Furniro",
			name, formatPercent(discount), url),
		HTML: buf.String(),
	}, nil
}

func formatPercent(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.1f", p)
}

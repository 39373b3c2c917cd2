package service

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/Shivanand-hulikatti/salon-booking/internal/model"
	"github.com/Shivanand-hulikatti/salon-booking/internal/notify"
)

// Notification kinds, also used as metric labels.
const (
	kindBooked    = "booked"
	kindConfirmed = "confirmed"
	kindRejected  = "rejected"
)

const (
	subjectBooked    = "Salon Appointment Booked"
	subjectConfirmed = "Appointment Confirmed"
	subjectRejected  = "Appointment Rejected"
)

// longDateLayout renders dates like "Tue Oct 20 2026".
const longDateLayout = "Mon Jan 02 2006"

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "booked"}}<p>Hello {{.Name}}, your appointment for {{.Services}} is booked for {{.Date}} at {{.Time}}. Status: Pending.</p>{{end}}
{{define "confirmed"}}<p>Dear {{.Name}}, your appointment for {{.Services}} on {{.Date}} at {{.Time}} is confirmed.</p>{{end}}
{{define "rejected"}}<p>Dear {{.Name}}, your appointment for {{.Services}} on {{.Date}} at {{.Time}} has been rejected.</p>{{end}}
`))

type emailData struct {
	Name     string
	Services string
	Date     string
	Time     string
}

func render(kind string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, kind, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func bookedEmail(to, name string, services []string, date, timeOfDay string) (notify.Message, error) {
	html, err := render(kindBooked, emailData{
		Name:     name,
		Services: strings.Join(services, ", "),
		Date:     date,
		Time:     timeOfDay,
	})
	if err != nil {
		return notify.Message{}, err
	}
	return notify.Message{To: to, ToName: name, Subject: subjectBooked, HTML: html}, nil
}

func statusEmail(kind string, v *model.AppointmentView) (notify.Message, error) {
	subject := subjectConfirmed
	if kind == kindRejected {
		subject = subjectRejected
	}
	html, err := render(kind, emailData{
		Name:     v.CustomerName,
		Services: strings.Join(v.ServiceNames, ", "),
		Date:     v.Date.Format(longDateLayout),
		Time:     v.Time,
	})
	if err != nil {
		return notify.Message{}, err
	}
	return notify.Message{To: v.CustomerEmail, ToName: v.CustomerName, Subject: subject, HTML: html}, nil
}

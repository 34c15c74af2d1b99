package notify

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"homerhythm/internal/model"
)

// DigestTask is one line in a digest listing.
type DigestTask struct {
	Title    string
	Category string
	Days     int // days until due; negative when overdue
}

const baseStyles = `
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
  .content { padding: 20px; background-color: #f9f9f9; }
  .task { background: white; padding: 15px; margin: 10px 0; border-left: 4px solid #4CAF50; }
  .task.overdue { border-left-color: #f44336; }
  .task.due-soon { border-left-color: #ff9800; }
  .task-title { font-weight: bold; font-size: 18px; margin-bottom: 5px; }
  .task-detail { color: #666; margin: 5px 0; }
  .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
`

var messageTemplate = template.Must(template.New("message").Funcs(template.FuncMap{
	"plural": func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	},
	"plural64": func(n int64) string {
		if n == 1 {
			return ""
		}
		return "s"
	},
	"abs": func(n int) int {
		if n < 0 {
			return -n
		}
		return n
	},
}).Parse(`
{{define "layout"}}<!DOCTYPE html>
<html>
<head><style>{{.Styles}}</style></head>
<body>
  <div class="container">
    <div class="header"><h1>{{.Heading}}</h1></div>
    <div class="content">{{.Body}}</div>
    <div class="footer">
      <p>This is an automated notification from HomeRhythm.</p>
      <p>To manage your notification preferences, log in to your account.</p>
    </div>
  </div>
</body>
</html>{{end}}

{{define "taskCard"}}
<div class="task {{.Class}}">
  <div class="task-title">{{.Task.Title}}</div>
  {{if .Task.Description}}<div class="task-detail">{{.Task.Description}}</div>{{end}}
  {{if .Task.Category}}<div class="task-detail"><strong>Category:</strong> {{.Task.Category}}</div>{{end}}
  {{if .Task.Priority}}<div class="task-detail"><strong>Priority:</strong> {{.Task.Priority}}</div>{{end}}
  {{if .Task.EstimatedTime}}<div class="task-detail"><strong>Estimated time:</strong> {{.Task.EstimatedTime}} minutes</div>{{end}}
</div>
{{end}}

{{define "dueSoon"}}
<p>Hi there,</p>
<p>This is a reminder that your task is due in {{.Days}} day{{plural .Days}}:</p>
{{template "taskCard" .Card}}
{{end}}

{{define "overdue"}}
<p>Hi there,</p>
<p>Your task is <strong>{{.Days}} day{{plural .Days}} overdue</strong>:</p>
{{template "taskCard" .Card}}
<p>Overdue tasks can pile up quickly. Knock this one out when you get a chance.</p>
{{end}}

{{define "assigned"}}
<p>Hi {{.AssigneeName}},</p>
<p>{{.AssignerName}} assigned a task to you:</p>
{{template "taskCard" .Card}}
{{end}}

{{define "digestItem"}}
  <div class="task-title">{{.Title}}</div>
  {{if .Category}}<div class="task-detail"><strong>Category:</strong> {{.Category}}</div>{{end}}
  <div class="task-detail">{{if lt .Days 0}}{{abs .Days}} day{{plural (abs .Days)}} overdue{{else}}due in {{.Days}} day{{plural .Days}}{{end}}</div>
{{end}}

{{define "digest"}}
<p>Hi there,</p>
{{if and (not .Overdue) (not .DueSoon)}}
<p>You're all caught up. Nothing is due soon and nothing is overdue.</p>
{{end}}
{{if .Overdue}}
<h2>Overdue</h2>
{{range .Overdue}}<div class="task overdue">{{template "digestItem" .}}</div>{{end}}
{{end}}
{{if .DueSoon}}
<h2>Due Soon</h2>
{{range .DueSoon}}<div class="task due-soon">{{template "digestItem" .}}</div>{{end}}
{{end}}
{{if .Weekly}}<p>You completed <strong>{{.CompletedCount}}</strong> task{{plural64 .CompletedCount}} in the last 7 days. Keep it up!</p>{{end}}
{{end}}

{{define "test"}}
<h2>Test Successful!</h2>
<p>Your email notifications are configured correctly.</p>
{{end}}
`))

type layoutData struct {
	Styles  template.CSS
	Heading string
	Body    template.HTML
}

type taskCard struct {
	Task  *model.Task
	Class string
}

func renderSection(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := messageTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func renderLayout(heading string, body template.HTML) (string, error) {
	var buf bytes.Buffer
	err := messageTemplate.ExecuteTemplate(&buf, "layout", layoutData{
		Styles:  template.CSS(baseStyles),
		Heading: heading,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("render layout: %w", err)
	}
	return buf.String(), nil
}

// RenderDueSoon builds the due-soon email body.
func RenderDueSoon(task *model.Task, days int) (string, error) {
	body, err := renderSection("dueSoon", struct {
		Days int
		Card taskCard
	}{days, taskCard{task, "due-soon"}})
	if err != nil {
		return "", err
	}
	return renderLayout("Task Due Soon", body)
}

// RenderOverdue builds the overdue email body.
func RenderOverdue(task *model.Task, daysOverdue int) (string, error) {
	body, err := renderSection("overdue", struct {
		Days int
		Card taskCard
	}{daysOverdue, taskCard{task, "overdue"}})
	if err != nil {
		return "", err
	}
	return renderLayout("Task Overdue", body)
}

// RenderAssigned builds the task-assigned email body.
func RenderAssigned(task *model.Task, assignerName, assigneeName string) (string, error) {
	body, err := renderSection("assigned", struct {
		AssignerName string
		AssigneeName string
		Card         taskCard
	}{assignerName, assigneeName, taskCard{task, ""}})
	if err != nil {
		return "", err
	}
	return renderLayout("New Task Assigned", body)
}

// RenderDigest builds the daily or weekly digest email body.
func RenderDigest(dueSoon, overdue []DigestTask, weekly bool, completedCount int64) (string, error) {
	body, err := renderSection("digest", struct {
		DueSoon        []DigestTask
		Overdue        []DigestTask
		Weekly         bool
		CompletedCount int64
	}{dueSoon, overdue, weekly, completedCount})
	if err != nil {
		return "", err
	}
	heading := "Your Daily Task Digest"
	if weekly {
		heading = "Your Weekly Task Summary"
	}
	return renderLayout(heading, body)
}

// RenderTest builds the test email body.
func RenderTest() (string, error) {
	body, err := renderSection("test", nil)
	if err != nil {
		return "", err
	}
	return renderLayout("HomeRhythm Test Email", body)
}

// DueSoonText is the short plain-text variant for chat channels.
func DueSoonText(task *model.Task, days int) string {
	return fmt.Sprintf("⏳ <b>%s</b> is due in %d day%s.",
		html.EscapeString(task.Title), days, pluralSuffix(days))
}

// OverdueText is the short plain-text variant for chat channels.
func OverdueText(task *model.Task, daysOverdue int) string {
	return fmt.Sprintf("⚠️ <b>%s</b> is %d day%s overdue.",
		html.EscapeString(task.Title), daysOverdue, pluralSuffix(daysOverdue))
}

// AssignedText is the short plain-text variant for chat channels.
func AssignedText(task *model.Task, assignerName string) string {
	return fmt.Sprintf("📌 %s assigned <b>%s</b> to you.",
		html.EscapeString(assignerName), html.EscapeString(task.Title))
}

// DigestText builds the plain-text digest for chat channels.
func DigestText(dueSoon, overdue []DigestTask, weekly bool, completedCount int64) string {
	var sb strings.Builder
	if weekly {
		sb.WriteString("📋 <b>Weekly task summary</b>\n")
	} else {
		sb.WriteString("📋 <b>Daily task digest</b>\n")
	}

	if len(dueSoon) == 0 && len(overdue) == 0 {
		sb.WriteString("You're all caught up.\n")
	}
	for _, item := range overdue {
		sb.WriteString(fmt.Sprintf("⚠️ %s (%d day%s overdue)\n",
			html.EscapeString(item.Title), -item.Days, pluralSuffix(-item.Days)))
	}
	for _, item := range dueSoon {
		sb.WriteString(fmt.Sprintf("⏳ %s (due in %d day%s)\n",
			html.EscapeString(item.Title), item.Days, pluralSuffix(item.Days)))
	}
	if weekly {
		sb.WriteString(fmt.Sprintf("✅ %d completed in the last 7 days\n", completedCount))
	}
	return strings.TrimSpace(sb.String())
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

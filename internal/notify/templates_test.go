package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homerhythm/internal/model"
)

func TestRenderDueSoon(t *testing.T) {
	t.Parallel()

	task := &model.Task{Title: "Clean gutters", Category: "exterior", Priority: "high"}

	html, err := RenderDueSoon(task, 3)
	require.NoError(t, err)
	assert.Contains(t, html, "Clean gutters")
	assert.Contains(t, html, "due in 3 days")
	assert.Contains(t, html, "exterior")
	assert.Contains(t, html, "Task Due Soon")

	html, err = RenderDueSoon(task, 1)
	require.NoError(t, err)
	assert.Contains(t, html, "due in 1 day:")
	assert.NotContains(t, html, "1 days")
}

func TestRenderOverdue(t *testing.T) {
	t.Parallel()

	task := &model.Task{Title: "Service boiler"}
	html, err := RenderOverdue(task, 4)
	require.NoError(t, err)
	assert.Contains(t, html, "Service boiler")
	assert.Contains(t, html, "4 days overdue")
	assert.Contains(t, html, "Task Overdue")
}

func TestRenderAssigned(t *testing.T) {
	t.Parallel()

	task := &model.Task{Title: "Mow lawn", Description: "Front and back"}
	html, err := RenderAssigned(task, "Alex", "Sam")
	require.NoError(t, err)
	assert.Contains(t, html, "Alex assigned a task to you")
	assert.Contains(t, html, "Hi Sam")
	assert.Contains(t, html, "Mow lawn")
	assert.Contains(t, html, "Front and back")
}

func TestRenderEscapesUserContent(t *testing.T) {
	t.Parallel()

	task := &model.Task{Title: `<script>alert("x")</script>`}
	html, err := RenderDueSoon(task, 2)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert")
}

func TestRenderDigest(t *testing.T) {
	t.Parallel()

	html, err := RenderDigest(nil, nil, false, 0)
	require.NoError(t, err)
	assert.Contains(t, html, "all caught up")
	assert.Contains(t, html, "Your Daily Task Digest")

	dueSoon := []DigestTask{{Title: "Upcoming chore", Days: 2}}
	overdue := []DigestTask{{Title: "Late chore", Category: "kitchen", Days: -3}}

	html, err = RenderDigest(dueSoon, overdue, true, 5)
	require.NoError(t, err)
	assert.Contains(t, html, "Your Weekly Task Summary")
	assert.Contains(t, html, "Upcoming chore")
	assert.Contains(t, html, "due in 2 days")
	assert.Contains(t, html, "Late chore")
	assert.Contains(t, html, "3 days overdue")
	assert.Contains(t, html, "completed <strong>5</strong> tasks")
	assert.NotContains(t, html, "all caught up")
}

func TestRenderTest(t *testing.T) {
	t.Parallel()

	html, err := RenderTest()
	require.NoError(t, err)
	assert.Contains(t, html, "Test Successful!")
}

func TestTextVariants(t *testing.T) {
	t.Parallel()

	task := &model.Task{Title: "Clean & tidy"}

	assert.Contains(t, DueSoonText(task, 1), "due in 1 day.")
	assert.Contains(t, DueSoonText(task, 2), "due in 2 days.")
	assert.Contains(t, DueSoonText(task, 2), "Clean &amp; tidy")
	assert.Contains(t, OverdueText(task, 4), "4 days overdue")
	assert.Contains(t, AssignedText(task, "Alex"), "Alex assigned")

	text := DigestText(
		[]DigestTask{{Title: "Soon", Days: 2}},
		[]DigestTask{{Title: "Late", Days: -1}},
		true, 3)
	assert.Contains(t, text, "Weekly task summary")
	assert.Contains(t, text, "Soon (due in 2 days)")
	assert.Contains(t, text, "Late (1 day overdue)")
	assert.Contains(t, text, "3 completed in the last 7 days")

	text = DigestText(nil, nil, false, 0)
	assert.Contains(t, text, "Daily task digest")
	assert.Contains(t, text, "all caught up")
}

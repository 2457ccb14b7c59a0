package main

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

func (c *Console) handleInteraction(cb slack.InteractionCallback) {
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		c.handleBlockActions(cb)
	case slack.InteractionTypeViewSubmission:
		c.handleViewSubmission(cb)
	}
}

func (c *Console) handleBlockActions(cb slack.InteractionCallback) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		return
	}
	act := cb.ActionCallback.BlockActions[0]
	channelID := cb.Channel.ID
	if channelID == "" {
		channelID = cb.Container.ChannelID
	}
	userID := cb.User.ID

	switch act.ActionID {
	case actionPagePrev, actionPageNext:
		page, err := strconv.Atoi(strings.TrimSpace(act.Value))
		if err != nil {
			page = 1
		}
		c.gotoPage(channelID, userID, page)
	case actionPageSize:
		size, err := strconv.Atoi(strings.TrimSpace(act.SelectedOption.Value))
		if err != nil {
			return
		}
		c.setPageSize(channelID, userID, size)
	case actionSortSelect:
		c.toggleSort(channelID, userID, strings.TrimSpace(act.SelectedOption.Value))
	case actionReload:
		c.reload(channelID, userID)
	case actionRowMenu:
		val := strings.TrimSpace(act.SelectedOption.Value)
		if val == "" {
			val = strings.TrimSpace(act.Value)
		}
		switch {
		case strings.HasPrefix(val, "view:"):
			c.openReportDetail(channelID, userID, strings.TrimPrefix(val, "view:"))
		case strings.HasPrefix(val, "viewdata:"):
			c.openDataDetail(channelID, userID, strings.TrimPrefix(val, "viewdata:"))
		case strings.HasPrefix(val, "split:"):
			c.openSplitModal(cb.TriggerID, channelID, userID, strings.TrimPrefix(val, "split:"))
		}
	case actionApproveOpen:
		c.startApprove(cb.TriggerID, channelID, userID, strings.TrimSpace(act.Value))
	case actionRejectOpen:
		c.startReject(cb.TriggerID, channelID, userID, strings.TrimSpace(act.Value))
	case actionDetailClose:
		c.closeDetail(channelID, userID)
	}
}

func (c *Console) gotoPage(channelID, userID string, page int) {
	var mode ListMode
	c.views.Update(userID, func(v *ViewState) {
		v.Paging = v.Paging.SetPage(page)
		v.Invalidate()
		mode = v.Mode
	})
	if mode == ModeData {
		c.refreshData(channelID, userID)
		return
	}
	c.refreshReports(channelID, userID)
}

// setPageSize changes the page size, resets to page 1 and re-fetches.
func (c *Console) setPageSize(channelID, userID string, size int) {
	var mode ListMode
	c.views.Update(userID, func(v *ViewState) {
		v.Paging = v.Paging.SetPageSize(size)
		v.Invalidate()
		mode = v.Mode
	})
	if mode == ModeData {
		c.refreshData(channelID, userID)
		return
	}
	c.refreshReports(channelID, userID)
}

// toggleSort cycles the sort state for a column and re-renders. Sorting is
// client-side over the fetched page, so no re-fetch happens.
func (c *Console) toggleSort(channelID, userID, field string) {
	var mode ListMode
	c.views.Update(userID, func(v *ViewState) {
		v.Sort = v.Sort.Toggle(field)
		mode = v.Mode
	})
	if mode == ModeData {
		c.renderData(channelID, userID)
		return
	}
	c.renderReports(channelID, userID)
}

func (c *Console) reload(channelID, userID string) {
	var mode ListMode
	c.views.Update(userID, func(v *ViewState) {
		v.Invalidate()
		mode = v.Mode
	})
	if mode == ModeData {
		c.refreshData(channelID, userID)
		return
	}
	c.refreshReports(channelID, userID)
}

// fetchContent loads one content id, retrying once through a re-login.
func (c *Console) fetchContent(contentID string) (*DetailContent, error) {
	detail, err := c.backend.FetchDetail(contentID)
	if errors.Is(err, ErrUnauthorized) {
		if loginErr := c.session.Relogin(); loginErr != nil {
			return nil, loginErr
		}
		detail, err = c.backend.FetchDetail(contentID)
	}
	return detail, err
}

// openReportDetail opens the detail/verification view for one record from
// the current page.
func (c *Console) openReportDetail(channelID, userID, recordID string) {
	var record DataRecord
	found := false
	c.views.Update(userID, func(v *ViewState) {
		for _, r := range v.Records {
			if r.ID == recordID {
				record = r
				found = true
				break
			}
		}
	})
	if !found {
		// The page moved on underneath the interaction; fetch the record
		// directly instead of failing the click.
		raw, err := c.backend.FetchReportDetail(recordID)
		if errors.Is(err, ErrUnauthorized) {
			if loginErr := c.session.Relogin(); loginErr == nil {
				raw, err = c.backend.FetchReportDetail(recordID)
			}
		}
		if err != nil {
			log.Printf("report detail fetch error id=%s: %v", recordID, err)
			c.postEphemeral(channelID, userID, fmt.Sprintf("Error loading record `%s`: %v", recordID, err))
			return
		}
		record = TransformReports([]reportRecordResponse{*raw}, c.cfg.Location)[0]
	}
	c.views.Update(userID, func(v *ViewState) {
		v.Verify = NewVerifySession(record)
	})

	c.postEphemeral(channelID, userID, fmt.Sprintf("Loading detail for `%s`...", record.ID))

	// Fetch each referenced content id. A failed fetch leaves its content
	// area empty and surfaces a notification; the dialog still opens.
	var imageDetail, textDetail *DetailContent
	if record.ImageID != "" {
		detail, err := c.fetchContent(record.ImageID)
		if err != nil {
			log.Printf("detail image fetch error id=%s: %v", record.ImageID, err)
			c.postEphemeral(channelID, userID, fmt.Sprintf("Error loading image content: %v", err))
		} else {
			imageDetail = detail
		}
	}
	if record.TextID != "" {
		detail, err := c.fetchContent(record.TextID)
		if err != nil {
			log.Printf("detail text fetch error id=%s: %v", record.TextID, err)
			c.postEphemeral(channelID, userID, fmt.Sprintf("Error loading text content: %v", err))
		} else {
			textDetail = detail
		}
	}

	var suggestion *TagSuggestion
	if textDetail != nil && c.cfg.SuggestEnabled() {
		s, err := SuggestHazardTags(c.cfg, textDetail.Content.Content)
		if err != nil {
			log.Printf("suggest error record=%s: %v", record.ID, err)
		} else {
			suggestion = s
		}
	}

	blocks := c.detailBlocks(record, imageDetail, textDetail, suggestion)
	if _, err := c.api.PostEphemeral(channelID, userID, slack.MsgOptionBlocks(blocks...)); err != nil {
		log.Printf("Error posting detail blocks record=%s: %v", record.ID, err)
		c.postEphemeral(channelID, userID, "Error rendering the detail view.")
	}
}

func describeContent(label string, detail *DetailContent) string {
	if detail == nil {
		return label + ": _not loaded_"
	}
	content := detail.Content.Content
	if content == "" {
		return label + ": _empty_"
	}
	if detail.Image != nil {
		mime := detail.Image.ContentType
		if mime == "" {
			mime = "image/jpeg"
		}
		return fmt.Sprintf("%s: %s, %d bytes (base64)", label, mime, len(content))
	}
	excerpt := content
	if len(excerpt) > 300 {
		excerpt = excerpt[:300] + "…"
	}
	return fmt.Sprintf("%s:\n> %s", label, strings.ReplaceAll(excerpt, "\n", "\n> "))
}

func classificationFlags(detail *DetailContent) string {
	if detail == nil || detail.Status == nil {
		return ""
	}
	s := detail.Status.Statuses
	var set []string
	if s.ObstaclesFlag {
		set = append(set, "Obstacles")
	}
	if s.FloodedFlag {
		set = append(set, "Flooded")
	}
	if s.TrafficJamFlag {
		set = append(set, "Traffic Jam")
	}
	if s.PoliceFlag {
		set = append(set, "Police")
	}
	if len(set) == 0 {
		return ""
	}
	return "Classified: " + strings.Join(set, ", ")
}

func (c *Console) detailBlocks(record DataRecord, imageDetail, textDetail *DetailContent, suggestion *TagSuggestion) []slack.Block {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", record.ID)
	fmt.Fprintf(&b, "%s — score %d%% — %s\n", record.Description, record.Score, record.Status)
	fmt.Fprintf(&b, "Submitted by %s at %s\n", record.SubmittedBy, record.SubmittedAt)
	fmt.Fprintf(&b, "Location: %s", record.Location)
	if record.Qualified {
		b.WriteString("\nQualified by the automatic pipeline")
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, b.String(), false, false), nil, nil),
	}

	var content []string
	if record.ImageID != "" {
		content = append(content, describeContent("Image", imageDetail))
	}
	if record.TextID != "" {
		content = append(content, describeContent("Text", textDetail))
	}
	if len(content) == 0 {
		content = append(content, "_No content available_")
	}
	for _, detail := range []*DetailContent{imageDetail, textDetail} {
		if flags := classificationFlags(detail); flags != "" {
			content = append(content, flags)
			break
		}
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(content, "\n"), false, false), nil, nil))

	if suggestion != nil {
		blocks = append(blocks, slack.NewContextBlock("detail_suggestion",
			slack.NewTextBlockObject(slack.MarkdownType, FormatSuggestion(suggestion), false, false)))
	}

	if history, err := GetDecisionsByRecord(c.db, record.ID); err == nil && len(history) > 0 {
		last := history[0]
		verdict := "rejected"
		if last.Valid {
			verdict = "approved"
		}
		blocks = append(blocks, slack.NewContextBlock("detail_history",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Last decision: %s by %s on %s", verdict, last.Moderator, last.DecidedAt.Format("Jan 2 15:04")),
				false, false)))
	}

	closeBtn := slack.NewButtonBlockElement(
		actionDetailClose, record.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Close", false, false),
	)
	if record.Decided() {
		blocks = append(blocks,
			slack.NewContextBlock("detail_decided",
				slack.NewTextBlockObject(slack.MarkdownType, "This record has already been decided.", false, false)),
			slack.NewActionBlock("detail_actions", closeBtn))
		return blocks
	}

	approveBtn := slack.NewButtonBlockElement(
		actionApproveOpen, record.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false),
	)
	approveBtn.Style = slack.StylePrimary
	rejectBtn := slack.NewButtonBlockElement(
		actionRejectOpen, record.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Reject", false, false),
	)
	rejectBtn.Style = slack.StyleDanger

	blocks = append(blocks, slack.NewActionBlock("detail_actions", approveBtn, rejectBtn, closeBtn))
	return blocks
}

// openDataDetail shows content and processing metadata for one data item.
// Data items carry no verification workflow; decisions happen on reports.
func (c *Console) openDataDetail(channelID, userID, rowID string) {
	var row DataRow
	found := false
	c.views.Update(userID, func(v *ViewState) {
		for _, r := range v.Rows {
			if r.ID == rowID {
				row = r
				found = true
				break
			}
		}
	})
	if !found {
		c.postEphemeral(channelID, userID, "Data item not found on the current page. Reload and try again.")
		return
	}

	c.postEphemeral(channelID, userID, fmt.Sprintf("Loading detail for `%s`...", row.ID))

	detail, err := c.fetchContent(row.ID)
	if err != nil {
		log.Printf("data detail fetch error id=%s: %v", row.ID, err)
		c.postEphemeral(channelID, userID, fmt.Sprintf("Error loading content: %v", err))
		detail = nil
	}

	label := "Text"
	if row.Type == ContentImage {
		label = "Image"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", row.ID)
	fmt.Fprintf(&b, "Uploaded by %s at %s\n", row.UploaderID, row.UploadTime)
	fmt.Fprintf(&b, "Processed: %t (%s) — Split: %s — Location: %s\n",
		row.Processed, row.ProcessedTime, row.Split, row.Location)
	b.WriteString(describeContent(label, detail))
	if flags := classificationFlags(detail); flags != "" {
		b.WriteString("\n" + flags)
	}

	c.postEphemeral(channelID, userID, b.String())
}

// startApprove reveals the tag-selection step in a modal. Nothing is
// submitted until the modal is confirmed.
func (c *Console) startApprove(triggerID, channelID, userID, recordID string) {
	var selected []HazardTag
	var startErr error
	c.views.Update(userID, func(v *ViewState) {
		if v.Verify == nil || v.Verify.Record.ID != recordID {
			startErr = fmt.Errorf("no open detail for record %s", recordID)
			return
		}
		if v.Verify.Phase == PhaseConfirmingReject {
			startErr = v.Verify.CancelReject()
			if startErr != nil {
				return
			}
		}
		if v.Verify.Phase == PhaseViewing {
			startErr = v.Verify.StartApprove()
			if startErr != nil {
				return
			}
		}
		selected = v.Verify.SelectedTags()
	})
	if startErr != nil {
		if errors.Is(startErr, ErrAlreadyDecided) {
			c.postEphemeral(channelID, userID, "This record has already been decided.")
			return
		}
		c.postEphemeral(channelID, userID, fmt.Sprintf("Cannot approve: %v", startErr))
		return
	}

	c.openTagsModal(triggerID, channelID, userID, recordID, selected)
}

func (c *Console) openTagsModal(triggerID, channelID, userID, recordID string, selected []HazardTag) {
	chosen := make(map[HazardTag]bool, len(selected))
	for _, tag := range selected {
		chosen[tag] = true
	}

	var opts []*slack.OptionBlockObject
	var initial []*slack.OptionBlockObject
	for _, tag := range AllHazardTags {
		opt := slack.NewOptionBlockObject(
			string(tag),
			slack.NewTextBlockObject(slack.PlainTextType, tag.Label(), false, false),
			nil,
		)
		opts = append(opts, opt)
		if chosen[tag] {
			initial = append(initial, opt)
		}
	}

	tagSelect := slack.NewOptionsMultiSelectBlockElement(
		slack.MultiOptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Select tags", false, false),
		tagsActionSelect,
		opts...,
	)
	tagSelect.InitialOptions = initial

	view := slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Approve report", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Confirm Approval", false, false),
		CallbackID:      modalTagsCallbackID,
		PrivateMetadata: fmt.Sprintf("%s%s|%s", modalMetaPrefix, recordID, channelID),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType,
					fmt.Sprintf("Approving *%s*. Select at least one hazard tag.", recordID),
					false, false),
				nil, nil),
			slack.NewInputBlock(
				tagsBlockSelect,
				slack.NewTextBlockObject(slack.PlainTextType, "Hazard tags", false, false),
				nil,
				tagSelect,
			),
		}},
	}
	if _, err := c.api.OpenView(triggerID, view); err != nil {
		c.postEphemeral(channelID, userID, fmt.Sprintf("Unable to open the approval dialog: %v", err))
	}
}

// startReject opens the explicit rejection confirmation.
func (c *Console) startReject(triggerID, channelID, userID, recordID string) {
	var startErr error
	c.views.Update(userID, func(v *ViewState) {
		if v.Verify == nil || v.Verify.Record.ID != recordID {
			startErr = fmt.Errorf("no open detail for record %s", recordID)
			return
		}
		if v.Verify.Phase != PhaseConfirmingReject {
			startErr = v.Verify.StartReject()
		}
	})
	if startErr != nil {
		if errors.Is(startErr, ErrAlreadyDecided) {
			c.postEphemeral(channelID, userID, "This record has already been decided.")
			return
		}
		c.postEphemeral(channelID, userID, fmt.Sprintf("Cannot reject: %v", startErr))
		return
	}

	view := slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Confirm rejection", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Confirm", false, false),
		CallbackID:      modalRejectCallbackID,
		PrivateMetadata: fmt.Sprintf("%s%s|%s", modalMetaPrefix, recordID, channelID),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType,
					fmt.Sprintf("Are you sure you want to reject *%s*?\nAll hazard flags will be submitted as false.", recordID),
					false, false),
				nil, nil),
		}},
	}
	if _, err := c.api.OpenView(triggerID, view); err != nil {
		c.postEphemeral(channelID, userID, fmt.Sprintf("Unable to open the rejection confirmation: %v", err))
	}
}

// closeDetail ends the verification session and resets transient state.
func (c *Console) closeDetail(channelID, userID string) {
	c.views.Update(userID, func(v *ViewState) {
		if v.Verify != nil {
			v.Verify.Close()
			v.Verify = nil
		}
	})
	c.postEphemeral(channelID, userID, "Detail closed.")
}

func (c *Console) handleViewSubmission(cb slack.InteractionCallback) {
	switch cb.View.CallbackID {
	case modalTagsCallbackID:
		c.handleTagsSubmit(cb)
	case modalRejectCallbackID:
		c.handleRejectSubmit(cb)
	case modalSplitCallbackID:
		c.handleSplitSubmit(cb)
	case modalFilterCallbackID:
		c.handleFilterSubmit(cb)
	}
}

// parseModalMeta splits "record:<id>|<channelID>" private metadata.
func parseModalMeta(cb slack.InteractionCallback) (recordID, channelID string, ok bool) {
	meta := strings.TrimSpace(cb.View.PrivateMetadata)
	parts := strings.Split(meta, "|")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], modalMetaPrefix) {
		return "", "", false
	}
	recordID = strings.TrimPrefix(parts[0], modalMetaPrefix)
	channelID = strings.TrimSpace(parts[1])
	if channelID == "" {
		channelID = cb.Container.ChannelID
	}
	if channelID == "" {
		channelID = cb.Channel.ID
	}
	return recordID, channelID, recordID != ""
}

func (c *Console) handleTagsSubmit(cb slack.InteractionCallback) {
	recordID, channelID, ok := parseModalMeta(cb)
	if !ok || cb.View.State == nil {
		return
	}
	userID := cb.User.ID

	var tags []HazardTag
	if block, exists := cb.View.State.Values[tagsBlockSelect]; exists {
		for _, opt := range block[tagsActionSelect].SelectedOptions {
			if tag := ParseHazardTag(opt.Value); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	var req ManualVerifyRequest
	var buildErr error
	c.views.Update(userID, func(v *ViewState) {
		if v.Verify == nil || v.Verify.Record.ID != recordID {
			buildErr = fmt.Errorf("no open detail for record %s", recordID)
			return
		}
		if buildErr = v.Verify.SetTags(tags); buildErr != nil {
			return
		}
		req, buildErr = v.Verify.ConfirmApprove()
	})
	if buildErr != nil {
		if errors.Is(buildErr, ErrNoTagsSelected) {
			// Validation failure: block locally, nothing is submitted.
			c.postEphemeral(channelID, userID, "Select at least one hazard tag before confirming the approval.")
			return
		}
		c.postEphemeral(channelID, userID, fmt.Sprintf("Cannot submit approval: %v", buildErr))
		log.Printf("approve submit error user=%s record=%s: %v", userID, recordID, buildErr)
		return
	}

	c.submitDecision(channelID, userID, req)
}

func (c *Console) handleRejectSubmit(cb slack.InteractionCallback) {
	recordID, channelID, ok := parseModalMeta(cb)
	if !ok {
		return
	}
	userID := cb.User.ID

	var req ManualVerifyRequest
	var buildErr error
	c.views.Update(userID, func(v *ViewState) {
		if v.Verify == nil || v.Verify.Record.ID != recordID {
			buildErr = fmt.Errorf("no open detail for record %s", recordID)
			return
		}
		req, buildErr = v.Verify.ConfirmReject()
	})
	if buildErr != nil {
		c.postEphemeral(channelID, userID, fmt.Sprintf("Cannot submit rejection: %v", buildErr))
		log.Printf("reject submit error user=%s record=%s: %v", userID, recordID, buildErr)
		return
	}

	c.submitDecision(channelID, userID, req)
}

// submitDecision sends the decision to the backend. Success closes the
// dialog session, records the audit entry and reloads the list; failure
// keeps the session open with selections intact.
func (c *Console) submitDecision(channelID, userID string, req ManualVerifyRequest) {
	err := c.backend.ManualVerify(req)
	if errors.Is(err, ErrUnauthorized) {
		if loginErr := c.session.Relogin(); loginErr == nil {
			err = c.backend.ManualVerify(req)
		}
	}
	if err != nil {
		c.views.Update(userID, func(v *ViewState) {
			if v.Verify != nil && v.Verify.Record.ID == req.ID {
				v.Verify.SubmitFailed()
			}
		})
		c.postEphemeral(channelID, userID, fmt.Sprintf("Manual verify failed: %v", err))
		log.Printf("manual verify error user=%s record=%s: %v", userID, req.ID, err)
		return
	}

	decision := Decision{
		RecordID:  req.ID,
		Valid:     req.Valid,
		Flags:     req.Status,
		Moderator: c.moderatorName(userID),
		DecidedAt: time.Now().In(c.cfg.Location),
	}
	if auditErr := RecordDecision(c.db, decision); auditErr != nil {
		log.Printf("audit record error record=%s: %v", req.ID, auditErr)
	}

	c.views.Update(userID, func(v *ViewState) {
		if v.Verify != nil && v.Verify.Record.ID == req.ID {
			v.Verify.Close()
			v.Verify = nil
		}
		v.Invalidate()
	})

	verdict := "rejected"
	if req.Valid {
		verdict = "approved"
	}
	c.postEphemeral(channelID, userID, fmt.Sprintf("Record `%s` %s.", req.ID, verdict))
	c.refreshReports(channelID, userID)
}

func (c *Console) openSplitModal(triggerID, channelID, userID, rowID string) {
	var opts []*slack.OptionBlockObject
	for _, split := range []string{"train", "val", "test"} {
		opts = append(opts, slack.NewOptionBlockObject(
			split,
			slack.NewTextBlockObject(slack.PlainTextType, strings.ToUpper(split[:1])+split[1:], false, false),
			nil,
		))
	}
	splitSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Split", false, false),
		splitActionSelect,
		opts...,
	)

	view := slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Assign split", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Assign", false, false),
		CallbackID:      modalSplitCallbackID,
		PrivateMetadata: fmt.Sprintf("%s%s|%s", modalMetaPrefix, rowID, channelID),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType,
					fmt.Sprintf("Assign a train/val/test split to *%s*.", rowID),
					false, false),
				nil, nil),
			slack.NewInputBlock(
				splitBlockSelect,
				slack.NewTextBlockObject(slack.PlainTextType, "Split", false, false),
				nil,
				splitSelect,
			),
		}},
	}
	if _, err := c.api.OpenView(triggerID, view); err != nil {
		c.postEphemeral(channelID, userID, fmt.Sprintf("Unable to open the split dialog: %v", err))
	}
}

func (c *Console) handleSplitSubmit(cb slack.InteractionCallback) {
	rowID, channelID, ok := parseModalMeta(cb)
	if !ok || cb.View.State == nil {
		return
	}
	userID := cb.User.ID

	split := ""
	if block, exists := cb.View.State.Values[splitBlockSelect]; exists {
		split = strings.TrimSpace(block[splitActionSelect].SelectedOption.Value)
	}
	if split == "" {
		return
	}

	err := c.backend.AssignSplit(rowID, split)
	if errors.Is(err, ErrUnauthorized) {
		if loginErr := c.session.Relogin(); loginErr == nil {
			err = c.backend.AssignSplit(rowID, split)
		}
	}
	if err != nil {
		c.postEphemeral(channelID, userID, fmt.Sprintf("Split assignment failed: %v", err))
		log.Printf("split assign error user=%s row=%s: %v", userID, rowID, err)
		return
	}

	c.postEphemeral(channelID, userID, fmt.Sprintf("Assigned `%s` to %s.", rowID, strings.ToUpper(split)))
	c.views.Update(userID, func(v *ViewState) { v.Invalidate() })
	c.refreshData(channelID, userID)
}

func (c *Console) openFilterModal(triggerID, channelID, userID string) {
	filters := c.views.Snapshot(userID).Filters

	textInput := func(action, label, initial string) *slack.PlainTextInputBlockElement {
		return slack.NewPlainTextInputBlockElement(
			slack.NewTextBlockObject(slack.PlainTextType, label, false, false),
			action,
		).WithInitialValue(initial)
	}

	optional := func(block slack.Block) slack.Block {
		if input, ok := block.(*slack.InputBlock); ok {
			input.Optional = true
		}
		return block
	}

	statusOpts := []*slack.OptionBlockObject{
		slack.NewOptionBlockObject("all", slack.NewTextBlockObject(slack.PlainTextType, "All Statuses", false, false), nil),
		slack.NewOptionBlockObject(string(StatusPending), slack.NewTextBlockObject(slack.PlainTextType, "Pending", false, false), nil),
		slack.NewOptionBlockObject(string(StatusApproved), slack.NewTextBlockObject(slack.PlainTextType, "Approved", false, false), nil),
		slack.NewOptionBlockObject(string(StatusRejected), slack.NewTextBlockObject(slack.PlainTextType, "Rejected", false, false), nil),
	}
	statusSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Status", false, false),
		filterActionStatus,
		statusOpts...,
	)
	for _, opt := range statusOpts {
		if opt.Value == filters.Status {
			statusSelect.InitialOption = opt
		}
	}
	if statusSelect.InitialOption == nil {
		statusSelect.InitialOption = statusOpts[0]
	}

	typeOpts := []*slack.OptionBlockObject{
		slack.NewOptionBlockObject("all", slack.NewTextBlockObject(slack.PlainTextType, "All Types", false, false), nil),
		slack.NewOptionBlockObject(string(ContentImage), slack.NewTextBlockObject(slack.PlainTextType, "Image", false, false), nil),
		slack.NewOptionBlockObject(string(ContentText), slack.NewTextBlockObject(slack.PlainTextType, "Text", false, false), nil),
		slack.NewOptionBlockObject(string(ContentBoth), slack.NewTextBlockObject(slack.PlainTextType, "Both", false, false), nil),
	}
	typeSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Content Type", false, false),
		filterActionContentType,
		typeOpts...,
	)
	for _, opt := range typeOpts {
		if opt.Value == filters.ContentType {
			typeSelect.InitialOption = opt
		}
	}
	if typeSelect.InitialOption == nil {
		typeSelect.InitialOption = typeOpts[0]
	}

	blocks := []slack.Block{
		optional(slack.NewInputBlock(filterBlockSearch,
			slack.NewTextBlockObject(slack.PlainTextType, "Search (ID or description)", false, false),
			nil, textInput(filterActionSearch, "Search", filters.Search))),
		slack.NewInputBlock(filterBlockStatus,
			slack.NewTextBlockObject(slack.PlainTextType, "Status", false, false),
			nil, statusSelect),
		slack.NewInputBlock(filterBlockContentType,
			slack.NewTextBlockObject(slack.PlainTextType, "Content Type", false, false),
			nil, typeSelect),
		optional(slack.NewInputBlock(filterBlockSubmitter,
			slack.NewTextBlockObject(slack.PlainTextType, "Submitted By", false, false),
			nil, textInput(filterActionSubmitter, "Submitter", filters.SubmittedBy))),
		optional(slack.NewInputBlock(filterBlockMinScore,
			slack.NewTextBlockObject(slack.PlainTextType, "Min Score (0)", false, false),
			nil, textInput(filterActionMinScore, "Min", filters.MinScore))),
		optional(slack.NewInputBlock(filterBlockMaxScore,
			slack.NewTextBlockObject(slack.PlainTextType, "Max Score (100)", false, false),
			nil, textInput(filterActionMaxScore, "Max", filters.MaxScore))),
	}

	view := slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Report filters", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Apply", false, false),
		CallbackID:      modalFilterCallbackID,
		PrivateMetadata: fmt.Sprintf("%sfilters|%s", modalMetaPrefix, channelID),
		Blocks:          slack.Blocks{BlockSet: blocks},
	}
	if _, err := c.api.OpenView(triggerID, view); err != nil {
		c.postEphemeral(channelID, userID, fmt.Sprintf("Unable to open the filter dialog: %v", err))
	}
}

// handleFilterSubmit applies the new filter state. Filtering is client-side
// over the fetched page, so the table re-renders without a re-fetch.
func (c *Console) handleFilterSubmit(cb slack.InteractionCallback) {
	_, channelID, ok := parseModalMeta(cb)
	if !ok || cb.View.State == nil {
		return
	}
	userID := cb.User.ID
	values := cb.View.State.Values

	textValue := func(block, action string) string {
		if b, exists := values[block]; exists {
			return strings.TrimSpace(b[action].Value)
		}
		return ""
	}
	selectValue := func(block, action string) string {
		if b, exists := values[block]; exists {
			return strings.TrimSpace(b[action].SelectedOption.Value)
		}
		return ""
	}

	filters := FilterState{
		Search:      textValue(filterBlockSearch, filterActionSearch),
		Status:      selectValue(filterBlockStatus, filterActionStatus),
		ContentType: selectValue(filterBlockContentType, filterActionContentType),
		SubmittedBy: textValue(filterBlockSubmitter, filterActionSubmitter),
		MinScore:    textValue(filterBlockMinScore, filterActionMinScore),
		MaxScore:    textValue(filterBlockMaxScore, filterActionMaxScore),
	}
	if filters.Status == "" {
		filters.Status = "all"
	}
	if filters.ContentType == "" {
		filters.ContentType = "all"
	}

	c.views.Update(userID, func(v *ViewState) {
		v.Filters = filters
		v.Mode = ModeReports
	})
	log.Printf("filters applied user=%s active=%d", userID, ActiveFilterCount(filters))
	c.renderReports(channelID, userID)
}

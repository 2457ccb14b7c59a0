package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

const (
	actionPagePrev    = "mod_page_prev"
	actionPageNext    = "mod_page_next"
	actionPageSize    = "mod_page_size"
	actionSortSelect  = "mod_sort_select"
	actionRowMenu     = "mod_row_menu"
	actionReload      = "mod_reload"
	actionApproveOpen = "mod_approve_open"
	actionRejectOpen  = "mod_reject_open"
	actionDetailClose = "mod_detail_close"

	modalFilterCallbackID = "mod_filter_modal"
	modalTagsCallbackID   = "mod_tags_modal"
	modalRejectCallbackID = "mod_reject_modal"
	modalSplitCallbackID  = "mod_split_modal"
	modalMetaPrefix       = "record:"

	filterBlockSearch       = "filter_search"
	filterActionSearch      = "search_input"
	filterBlockStatus       = "filter_status"
	filterActionStatus      = "status_input"
	filterBlockContentType  = "filter_content_type"
	filterActionContentType = "content_type_input"
	filterBlockSubmitter    = "filter_submitter"
	filterActionSubmitter   = "submitter_input"
	filterBlockMinScore     = "filter_min_score"
	filterActionMinScore    = "min_score_input"
	filterBlockMaxScore     = "filter_max_score"
	filterActionMaxScore    = "max_score_input"

	tagsBlockSelect  = "tags_select"
	tagsActionSelect = "tags_input"

	splitBlockSelect  = "split_select"
	splitActionSelect = "split_input"
)

var pageSizeOptions = []int{5, 10, 20, 50, 100}

// Console is the Slack-facing moderation surface.
type Console struct {
	cfg     Config
	db      *sql.DB
	backend *Backend
	session *Session
	api     *slack.Client
	views   *ViewStore
}

func NewConsole(cfg Config, db *sql.DB, backend *Backend, session *Session, api *slack.Client) *Console {
	return &Console{
		cfg:     cfg,
		db:      db,
		backend: backend,
		session: session,
		api:     api,
		views:   NewViewStore(cfg.PageSize),
	}
}

// Start connects via Socket Mode and dispatches events until the connection
// ends.
func (c *Console) Start() error {
	client := socketmode.New(c.api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go c.handleSlashCommand(cmd)
			case socketmode.EventTypeInteractive:
				client.Ack(*evt.Request)
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				go c.handleInteraction(callback)
			}
		}
	}()

	log.Println("Moderation console connected via Socket Mode")
	return client.Run()
}

func (c *Console) handleSlashCommand(cmd slack.SlashCommand) {
	if !c.isModerator(cmd.UserID) {
		c.postEphemeral(cmd.ChannelID, cmd.UserID, "You are not on the moderator list.")
		return
	}

	switch cmd.Command {
	case "/reports":
		c.handleReports(cmd)
	case "/data":
		c.handleData(cmd)
	case "/mod-filter":
		c.openFilterModal(cmd.TriggerID, cmd.ChannelID, cmd.UserID)
	case "/mod-stats":
		c.handleStats(cmd)
	case "/mod-help":
		c.handleHelp(cmd)
	}
}

func (c *Console) isModerator(userID string) bool {
	if len(c.cfg.Moderators) == 0 {
		return true
	}
	for _, m := range c.cfg.Moderators {
		if strings.TrimSpace(m) == userID {
			return true
		}
	}
	user, err := c.api.GetUserInfo(userID)
	if err != nil {
		log.Printf("moderator check user=%s: %v", userID, err)
		return false
	}
	return c.cfg.IsModeratorName(user.Profile.DisplayName) ||
		c.cfg.IsModeratorName(user.RealName) ||
		c.cfg.IsModeratorName(user.Name)
}

// moderatorName resolves a display name for the audit log.
func (c *Console) moderatorName(userID string) string {
	user, err := c.api.GetUserInfo(userID)
	if err != nil {
		return userID
	}
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName
	}
	if user.RealName != "" {
		return user.RealName
	}
	return userID
}

func parseReportView(arg string) ReportView {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "all":
		return ReportAll
	case "valid":
		return ReportValid
	case "invalid":
		return ReportInvalid
	case "needed":
		return ReportNeeded
	case "unqualified", "":
		return ReportUnqualified
	}
	return ReportUnqualified
}

func parseDataView(arg string) DataView {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "image", "img":
		return DataImage
	case "text":
		return DataText
	}
	return DataAll
}

func (c *Console) handleReports(cmd slack.SlashCommand) {
	view := parseReportView(cmd.Text)
	c.views.Update(cmd.UserID, func(v *ViewState) {
		v.Mode = ModeReports
		v.ReportView = view
		v.Paging = v.Paging.SetPage(1)
		v.Invalidate()
	})
	c.refreshReports(cmd.ChannelID, cmd.UserID)
}

func (c *Console) handleData(cmd slack.SlashCommand) {
	view := parseDataView(cmd.Text)
	c.views.Update(cmd.UserID, func(v *ViewState) {
		v.Mode = ModeData
		v.DataView = view
		v.Paging = v.Paging.SetPage(1)
		v.Invalidate()
	})
	c.refreshData(cmd.ChannelID, cmd.UserID)
}

func (c *Console) handleStats(cmd slack.SlashCommand) {
	var since time.Time
	if strings.EqualFold(strings.TrimSpace(cmd.Text), "week") {
		since = time.Now().In(c.cfg.Location).AddDate(0, 0, -7)
	}
	stats, err := GetDecisionStats(c.db, since)
	if err != nil {
		c.postEphemeral(cmd.ChannelID, cmd.UserID, fmt.Sprintf("Error reading decision stats: %v", err))
		log.Printf("stats error user=%s: %v", cmd.UserID, err)
		return
	}
	c.postEphemeral(cmd.ChannelID, cmd.UserID, FormatDecisionStats(stats))
}

func (c *Console) handleHelp(cmd slack.SlashCommand) {
	help := "*Hazard moderation console*\n" +
		"• `/reports [all|unqualified|valid|invalid|needed]` — Browse report listings\n" +
		"• `/data [all|image|text]` — Browse raw data items\n" +
		"• `/mod-filter` — Edit the report filters (search, status, type, submitter, score range)\n" +
		"• `/mod-stats [week]` — Decision statistics from the audit log\n" +
		"• `/mod-help` — This message\n\n" +
		"Open a row's menu to view its detail and approve (with hazard tags) or reject it."
	c.postEphemeral(cmd.ChannelID, cmd.UserID, help)
}

// fetchReportsPage pulls one page from the backend, retrying once through a
// re-login when the token expired.
func (c *Console) fetchReportsPage(view ReportView, limit, offset int) ([]reportRecordResponse, int, error) {
	raw, total, err := c.backend.FetchReports(view, limit, offset)
	if errors.Is(err, ErrUnauthorized) {
		if loginErr := c.session.Relogin(); loginErr != nil {
			return nil, 0, loginErr
		}
		raw, total, err = c.backend.FetchReports(view, limit, offset)
	}
	return raw, total, err
}

func (c *Console) fetchDataPage(view DataView, limit, offset int) ([]dataItemResponse, int, error) {
	raw, total, err := c.backend.FetchData(view, limit, offset)
	if errors.Is(err, ErrUnauthorized) {
		if loginErr := c.session.Relogin(); loginErr != nil {
			return nil, 0, loginErr
		}
		raw, total, err = c.backend.FetchData(view, limit, offset)
	}
	return raw, total, err
}

// refreshReports fetches the current report page and re-renders. Responses
// superseded by a newer page/filter change are dropped.
func (c *Console) refreshReports(channelID, userID string) {
	var gen uint64
	var view ReportView
	var paging Pagination
	c.views.Update(userID, func(v *ViewState) {
		v.Mode = ModeReports
		gen = v.BeginFetch()
		view = v.ReportView
		paging = v.Paging
	})

	raw, total, err := c.fetchReportsPage(view, paging.PageSize, paging.Offset())
	if err != nil {
		c.views.Update(userID, func(v *ViewState) { v.CompleteFetch(gen) })
		c.postEphemeral(channelID, userID, fmt.Sprintf("Error loading reports: %v", err))
		log.Printf("reports fetch error user=%s view=%s: %v", userID, view, err)
		return
	}

	records := TransformReports(raw, c.cfg.Location)
	stale := false
	c.views.Update(userID, func(v *ViewState) {
		if !v.CompleteFetch(gen) {
			stale = true
			return
		}
		v.Records = records
		v.Paging = v.Paging.SetTotal(total)
	})
	if stale {
		log.Printf("reports fetch superseded user=%s gen=%d", userID, gen)
		return
	}
	c.renderReports(channelID, userID)
}

func (c *Console) refreshData(channelID, userID string) {
	var gen uint64
	var view DataView
	var paging Pagination
	c.views.Update(userID, func(v *ViewState) {
		v.Mode = ModeData
		gen = v.BeginFetch()
		view = v.DataView
		paging = v.Paging
	})

	raw, total, err := c.fetchDataPage(view, paging.PageSize, paging.Offset())
	if err != nil {
		c.views.Update(userID, func(v *ViewState) { v.CompleteFetch(gen) })
		c.postEphemeral(channelID, userID, fmt.Sprintf("Error loading data items: %v", err))
		log.Printf("data fetch error user=%s view=%s: %v", userID, view, err)
		return
	}

	rows := TransformData(raw, c.cfg.Location)
	stale := false
	c.views.Update(userID, func(v *ViewState) {
		if !v.CompleteFetch(gen) {
			stale = true
			return
		}
		v.Rows = rows
		v.Paging = v.Paging.SetTotal(total)
	})
	if stale {
		log.Printf("data fetch superseded user=%s gen=%d", userID, gen)
		return
	}
	c.renderData(channelID, userID)
}

func reportColumns() []Column[DataRecord] {
	return []Column[DataRecord]{
		{Key: "id", Header: "ID", Sortable: true, Value: func(r DataRecord) string { return r.ID }},
		{Key: "contentType", Header: "Type", Sortable: true, Value: func(r DataRecord) string { return string(r.ContentType) }},
		{Key: "score", Header: "Score", Sortable: true,
			Value:  func(r DataRecord) string { return strconv.Itoa(r.Score) },
			Render: func(r DataRecord) string { return fmt.Sprintf("%d%%", r.Score) }},
		{Key: "status", Header: "Status", Sortable: true, Value: func(r DataRecord) string { return string(r.Status) }},
		{Key: "submittedBy", Header: "Submitter", Sortable: true, Value: func(r DataRecord) string { return r.SubmittedBy }},
		{Key: "submittedAt", Header: "Submitted", Sortable: true, Value: func(r DataRecord) string { return r.SubmittedAt }},
		{Key: "location", Header: "Location", Sortable: true, Value: func(r DataRecord) string { return r.Location }},
	}
}

func dataColumns() []Column[DataRow] {
	return []Column[DataRow]{
		{Key: "id", Header: "ID", Sortable: true, Value: func(r DataRow) string { return r.ID }},
		{Key: "uploaderID", Header: "Uploader", Sortable: true, Value: func(r DataRow) string { return r.UploaderID }},
		{Key: "type", Header: "Type", Value: func(r DataRow) string { return string(r.Type) }},
		{Key: "uploadTime", Header: "Uploaded", Sortable: true, Value: func(r DataRow) string { return r.UploadTime }},
		{Key: "processed", Header: "Processed", Sortable: true,
			Value: func(r DataRow) string { return strconv.FormatBool(r.Processed) },
			Render: func(r DataRow) string {
				if r.Processed {
					return "Yes"
				}
				return "No"
			}},
		{Key: "processedTime", Header: "Processed At", Sortable: true, Value: func(r DataRow) string { return r.ProcessedTime }},
		{Key: "split", Header: "Split", Value: func(r DataRow) string { return r.Split.String() }},
		{Key: "location", Header: "Location", Sortable: true, Value: func(r DataRow) string { return r.Location }},
	}
}

func (c *Console) renderReports(channelID, userID string) {
	state := c.views.Snapshot(userID)
	columns := reportColumns()

	filtered := FilterRecords(state.Records, state.Filters)
	sorted := SortRows(filtered, columns, state.Sort)
	lines := RenderTableLines(sorted, columns, state.Sort)

	title := fmt.Sprintf("Reports — %s (%d total)", state.ReportView, state.Paging.Total)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, false, false)),
	}
	if n := ActiveFilterCount(state.Filters); n > 0 {
		blocks = append(blocks, slack.NewContextBlock("reports_filters",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("%d filter(s) active — %d of %d records on this page match. `/mod-filter` to edit.",
					n, len(filtered), len(state.Records)),
				false, false)))
	}
	blocks = append(blocks, slack.NewContextBlock("reports_header",
		slack.NewTextBlockObject(slack.MarkdownType, "`"+lines[0]+"`", false, false)))

	if len(sorted) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "_"+lines[1]+"_", false, false), nil, nil))
	}
	for i, record := range sorted {
		viewOpt := slack.NewOptionBlockObject(
			"view:"+record.ID,
			slack.NewTextBlockObject(slack.PlainTextType, "View detail", false, false),
			nil,
		)
		menu := slack.NewOverflowBlockElement(actionRowMenu, viewOpt)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "`"+lines[i+1]+"`", false, false),
			nil,
			slack.NewAccessory(menu),
		))
	}

	blocks = append(blocks, listControls(state, columns)...)

	if _, err := c.api.PostEphemeral(channelID, userID, slack.MsgOptionBlocks(blocks...)); err != nil {
		log.Printf("Error posting report list blocks: %v", err)
		c.postEphemeral(channelID, userID, "Error rendering the report list.")
		return
	}
	log.Printf("report list user=%s view=%s page=%d shown=%d", userID, state.ReportView, state.Paging.Page, len(sorted))
}

func (c *Console) renderData(channelID, userID string) {
	state := c.views.Snapshot(userID)
	columns := dataColumns()

	sorted := SortRows(state.Rows, columns, state.Sort)
	lines := RenderTableLines(sorted, columns, state.Sort)

	title := fmt.Sprintf("Data items — %s (%d total)", state.DataView, state.Paging.Total)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, false, false)),
		slack.NewContextBlock("data_header",
			slack.NewTextBlockObject(slack.MarkdownType, "`"+lines[0]+"`", false, false)),
	}

	if len(sorted) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "_"+lines[1]+"_", false, false), nil, nil))
	}
	for i, row := range sorted {
		viewOpt := slack.NewOptionBlockObject(
			"viewdata:"+row.ID,
			slack.NewTextBlockObject(slack.PlainTextType, "View detail", false, false),
			nil,
		)
		splitOpt := slack.NewOptionBlockObject(
			"split:"+row.ID,
			slack.NewTextBlockObject(slack.PlainTextType, "Assign split", false, false),
			nil,
		)
		menu := slack.NewOverflowBlockElement(actionRowMenu, viewOpt, splitOpt)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "`"+lines[i+1]+"`", false, false),
			nil,
			slack.NewAccessory(menu),
		))
	}

	blocks = append(blocks, listControls(state, columns)...)

	if _, err := c.api.PostEphemeral(channelID, userID, slack.MsgOptionBlocks(blocks...)); err != nil {
		log.Printf("Error posting data list blocks: %v", err)
		c.postEphemeral(channelID, userID, "Error rendering the data list.")
		return
	}
	log.Printf("data list user=%s view=%s page=%d shown=%d", userID, state.DataView, state.Paging.Page, len(sorted))
}

// listControls builds the shared footer: pagination, page size, sort and
// reload controls. Nav buttons are omitted at the boundaries and while a
// fetch is in flight.
func listControls[T any](state ViewState, columns []Column[T]) []slack.Block {
	start, end := state.Paging.RangeLabel()
	footer := fmt.Sprintf("%d-%d of %d — Page %d of %d",
		start, end, state.Paging.Total, state.Paging.Page, state.Paging.TotalPages())

	var nav []slack.BlockElement
	if state.Paging.HasPrev() && !state.Fetching {
		nav = append(nav, slack.NewButtonBlockElement(
			actionPagePrev,
			strconv.Itoa(state.Paging.Page-1),
			slack.NewTextBlockObject(slack.PlainTextType, "Prev", false, false),
		))
	}
	if state.Paging.HasNext() && !state.Fetching {
		nav = append(nav, slack.NewButtonBlockElement(
			actionPageNext,
			strconv.Itoa(state.Paging.Page+1),
			slack.NewTextBlockObject(slack.PlainTextType, "Next", false, false),
		))
	}

	var sizeOpts []*slack.OptionBlockObject
	for _, n := range pageSizeOptions {
		sizeOpts = append(sizeOpts, slack.NewOptionBlockObject(
			strconv.Itoa(n),
			slack.NewTextBlockObject(slack.PlainTextType, strconv.Itoa(n), false, false),
			nil,
		))
	}
	sizeSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Rows per page", false, false),
		actionPageSize,
		sizeOpts...,
	)

	var sortOpts []*slack.OptionBlockObject
	for _, col := range columns {
		if !col.Sortable {
			continue
		}
		sortOpts = append(sortOpts, slack.NewOptionBlockObject(
			col.Key,
			slack.NewTextBlockObject(slack.PlainTextType, "Sort: "+col.Header+state.Sort.Indicator(col.Key), false, false),
			nil,
		))
	}
	sortSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Sort by", false, false),
		actionSortSelect,
		sortOpts...,
	)

	controls := append(nav,
		sizeSelect,
		sortSelect,
		slack.NewButtonBlockElement(
			actionReload,
			"reload",
			slack.NewTextBlockObject(slack.PlainTextType, "Reload", false, false),
		),
	)

	return []slack.Block{
		slack.NewContextBlock("list_footer",
			slack.NewTextBlockObject(slack.MarkdownType, footer, false, false)),
		slack.NewActionBlock("list_controls", controls...),
	}
}

func (c *Console) postEphemeral(channelID, userID, text string) {
	if _, err := c.api.PostEphemeral(channelID, userID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Error posting ephemeral message: %v", err)
	}
}

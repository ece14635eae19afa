package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/errors"
	"github.com/schnell18/titra/internal/invoicing"
	"github.com/schnell18/titra/internal/reporting"
	"github.com/schnell18/titra/internal/repository/sqlite"
	"github.com/schnell18/titra/internal/rules"
	"github.com/schnell18/titra/internal/validation"
	"github.com/schnell18/titra/internal/wekan"
)

// timecardServiceImpl implements the TimecardService interface
type timecardServiceImpl struct {
	repo        sqlite.Repository
	mapper      *domain.Mapper
	validator   *validation.TimecardValidator
	ruleEngine  *rules.Engine
	resolver    *reporting.ScopeResolver
	executor    *reporting.Executor
	newInvoicer InvoicerFactory
	cardSource  CardSource
	now         func() time.Time
}

// NewTimecardService creates a new TimecardService instance. A nil invoicer
// factory falls back to the Siwapp HTTP client, a nil card source to the
// wekan board export client.
func NewTimecardService(repo sqlite.Repository, ruleEngine *rules.Engine, newInvoicer InvoicerFactory, cardSource CardSource) TimecardService {
	if newInvoicer == nil {
		newInvoicer = func(url, token string) Invoicer {
			return invoicing.NewClient(url, token)
		}
	}
	if cardSource == nil {
		cardSource = wekan.NewClient()
	}
	return &timecardServiceImpl{
		repo:        repo,
		mapper:      domain.NewMapper(),
		validator:   validation.NewTimecardValidator(),
		ruleEngine:  ruleEngine,
		resolver:    reporting.NewScopeResolver(repo),
		executor:    reporting.NewExecutor(repo),
		newInvoicer: newInvoicer,
		cardSource:  cardSource,
		now:         time.Now,
	}
}

// checkRule consults the business-rule hook for the proposed entry. The
// hook fails closed, so any error here vetoes the operation.
func (s *timecardServiceImpl) checkRule(ctx context.Context, caller domain.User, projectID, task string, state domain.State, date time.Time, hours float64) error {
	dbProject, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	project, err := s.mapper.Project.FromDatabase(*dbProject)
	if err != nil {
		return errors.NewDatabaseError("map project", err)
	}

	return s.ruleEngine.Check(ctx, rules.Input{
		User:    caller.Profile,
		Project: project,
		Task:    task,
		State:   state,
		Date:    date,
		Hours:   hours,
	})
}

// touchTask creates or refreshes the task record for an expanded task name,
// advancing its last-used timestamp and custom fields.
func (s *timecardServiceImpl) touchTask(ctx context.Context, userID, name, cardID string, customFields map[string]interface{}) error {
	dbTask, err := s.repo.FindTaskByName(ctx, userID, name)
	if err != nil {
		if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return err
		}
		task := domain.Task{
			ID:           uuid.NewString(),
			UserID:       userID,
			Name:         name,
			CardID:       cardID,
			LastUsed:     s.now(),
			CustomFields: customFields,
		}
		newTask, err := s.mapper.Task.ToDatabase(task)
		if err != nil {
			return errors.NewDatabaseError("map task", err)
		}
		return s.repo.CreateTask(ctx, &newTask)
	}

	dbTask.LastUsed = sqlite.FormatTimeForDB(s.now())
	if cardID != "" {
		dbTask.CardID = cardID
	}
	if len(customFields) > 0 {
		// Incoming keys are merged into the stored fields; keys the call
		// does not mention keep their previous values.
		merged, err := sqlite.UnmarshalObject(dbTask.CustomFields)
		if err != nil {
			return errors.NewDatabaseError("unmarshal task custom fields", err)
		}
		if merged == nil {
			merged = make(map[string]interface{}, len(customFields))
		}
		for key, value := range customFields {
			merged[key] = value
		}
		fields, err := sqlite.MarshalJSONField(merged)
		if err != nil {
			return errors.NewDatabaseError("marshal task custom fields", err)
		}
		dbTask.CustomFields = fields
	}
	return s.repo.UpdateTask(ctx, dbTask)
}

// Insert creates the timecard for the entry's key and creates or refreshes
// the corresponding task record. Repeated inserts on the same (user,
// project, task, date) key never fragment it: the key ends up holding
// exactly one entry carrying the final call's hours.
func (s *timecardServiceImpl) Insert(ctx context.Context, caller domain.User, input TimecardInput) (*domain.Timecard, error) {
	if err := s.Upsert(ctx, caller, input); err != nil {
		return nil, err
	}

	task := domain.ExpandShorthand(input.Task)
	dbMatches, err := s.repo.FindTimecardsByKey(ctx, caller.ID, input.ProjectID, task, domain.Day(input.Date))
	if err != nil {
		return nil, err
	}
	matches, err := s.mapper.Timecard.FromDatabaseSlice(dbMatches)
	if err != nil {
		return nil, errors.NewDatabaseError("map timecards", err)
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFoundError("timecard", task)
	}
	return &matches[0], nil
}

// Upsert applies the insert-or-replace semantics for one logical entry: zero
// hours deletes any matching entry, fragmented keys are collapsed into one,
// and otherwise the entry for the key is replaced with the incoming values.
func (s *timecardServiceImpl) Upsert(ctx context.Context, caller domain.User, input TimecardInput) error {
	if err := s.validator.ValidateInput(input.ProjectID, input.Task, input.Date, input.Hours); err != nil {
		return err
	}
	task := domain.ExpandShorthand(input.Task)

	if err := s.checkRule(ctx, caller, input.ProjectID, task, domain.StateNew, input.Date, input.Hours); err != nil {
		return err
	}
	input.Task = task
	return s.upsertRaw(ctx, caller.ID, input)
}

// upsertRaw is the rule-free upsert core shared with the backfill flow. The
// task text must already be expanded.
func (s *timecardServiceImpl) upsertRaw(ctx context.Context, userID string, input TimecardInput) error {
	if err := s.touchTask(ctx, userID, input.Task, input.CardID, input.CustomFields); err != nil {
		return err
	}

	date := domain.Day(input.Date)
	if input.Hours == 0 {
		_, err := s.repo.DeleteTimecardsByKey(ctx, userID, input.ProjectID, input.Task, date)
		return err
	}

	dbMatches, err := s.repo.FindTimecardsByKey(ctx, userID, input.ProjectID, input.Task, date)
	if err != nil {
		return err
	}
	matches, err := s.mapper.Timecard.FromDatabaseSlice(dbMatches)
	if err != nil {
		return errors.NewDatabaseError("map timecards", err)
	}

	if len(matches) > 1 {
		// Fragmented key: all matches are removed before the single
		// canonical replacement is written.
		if _, err := s.repo.DeleteTimecardsByKey(ctx, userID, input.ProjectID, input.Task, date); err != nil {
			return err
		}
		matches = nil
	}

	replacement, err := s.mapper.Timecard.ToDatabase(collapseMatches(matches, userID, input))
	if err != nil {
		return errors.NewDatabaseError("map timecard", err)
	}
	if len(matches) == 1 {
		return s.repo.UpdateTimecard(ctx, &replacement)
	}
	return s.repo.CreateTimecard(ctx, &replacement)
}

// collapseMatches is the pure merge step of an upsert: given the surviving
// matches for a key, it returns the single canonical replacement. The
// replacement carries the incoming call's values (last write wins, not a
// sum) and drops any previous billing state.
func collapseMatches(matches []domain.Timecard, userID string, input TimecardInput) domain.Timecard {
	id := uuid.NewString()
	if len(matches) == 1 {
		id = matches[0].ID
	}
	return domain.Timecard{
		ID:           id,
		UserID:       userID,
		ProjectID:    input.ProjectID,
		Task:         input.Task,
		CardID:       input.CardID,
		Date:         domain.Day(input.Date),
		Hours:        input.Hours,
		CustomFields: input.CustomFields,
	}
}

// UpsertWeek applies a bulk list of logical entries, validating each one
// against the rule hook before it is applied.
func (s *timecardServiceImpl) UpsertWeek(ctx context.Context, caller domain.User, entries []TimecardInput) error {
	for _, entry := range entries {
		if err := s.Upsert(ctx, caller, entry); err != nil {
			return err
		}
	}
	return nil
}

// Update modifies an existing timecard in place. The rule hook is consulted
// with the entry's current state, not with "new".
func (s *timecardServiceImpl) Update(ctx context.Context, caller domain.User, id string, input TimecardInput) error {
	if err := s.validator.ValidateID(id); err != nil {
		return err
	}
	if err := s.validator.ValidateInput(input.ProjectID, input.Task, input.Date, input.Hours); err != nil {
		return err
	}

	dbCard, err := s.repo.GetTimecard(ctx, id)
	if err != nil {
		return err
	}
	existing, err := s.mapper.Timecard.FromDatabase(*dbCard)
	if err != nil {
		return errors.NewDatabaseError("map timecard", err)
	}

	task := domain.ExpandShorthand(input.Task)
	if err := s.checkRule(ctx, caller, input.ProjectID, task, existing.State.Normalize(), input.Date, input.Hours); err != nil {
		return err
	}

	// The task record is created if this description is new for the user;
	// an existing record keeps its last-used timestamp on update.
	if _, err := s.repo.FindTaskByName(ctx, caller.ID, task); err != nil {
		if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return err
		}
		if err := s.touchTask(ctx, caller.ID, task, input.CardID, input.CustomFields); err != nil {
			return err
		}
	}

	existing.ProjectID = input.ProjectID
	existing.Task = task
	existing.Date = domain.Day(input.Date)
	existing.Hours = input.Hours
	if input.CardID != "" {
		existing.CardID = input.CardID
	}
	if len(input.CustomFields) > 0 {
		existing.CustomFields = input.CustomFields
	}

	updated, err := s.mapper.Timecard.ToDatabase(existing)
	if err != nil {
		return errors.NewDatabaseError("map timecard", err)
	}
	return s.repo.UpdateTimecard(ctx, &updated)
}

// Delete removes a caller-owned timecard. The rule hook is still consulted
// with the entry's own values so protected states can veto the removal.
func (s *timecardServiceImpl) Delete(ctx context.Context, caller domain.User, id string) error {
	if err := s.validator.ValidateID(id); err != nil {
		return err
	}

	dbCard, err := s.repo.GetTimecard(ctx, id)
	if err != nil {
		return err
	}
	existing, err := s.mapper.Timecard.FromDatabase(*dbCard)
	if err != nil {
		return errors.NewDatabaseError("map timecard", err)
	}
	if existing.UserID != caller.ID {
		return errors.NewNotFoundError("timecard", id)
	}

	if err := s.checkRule(ctx, caller, existing.ProjectID, existing.Task, existing.State.Normalize(), existing.Date, existing.Hours); err != nil {
		return err
	}
	return s.repo.DeleteTimecard(ctx, id)
}

// SetState applies a bulk state transition. Transitions to exported only
// touch entries still in state new; transitions to billed skip entries
// marked not billable; any other target applies unconditionally.
func (s *timecardServiceImpl) SetState(ctx context.Context, _ domain.User, ids []string, state domain.State) error {
	switch state {
	case domain.StateNew, domain.StateExported, domain.StateBilled, domain.StateNotBillable:
	default:
		return errors.NewInvalidInputError("state", state, "unknown state")
	}

	switch state {
	case domain.StateExported:
		return s.repo.MarkTimecardsExported(ctx, ids)
	case domain.StateBilled:
		return s.repo.MarkTimecardsBilled(ctx, ids)
	default:
		return s.repo.SetTimecardsState(ctx, ids, string(state))
	}
}

// ListForDate returns the caller's timecards for one calendar day.
func (s *timecardServiceImpl) ListForDate(ctx context.Context, caller domain.User, date time.Time) ([]domain.Timecard, error) {
	day := domain.Day(date)
	dbCards, err := s.repo.SearchTimecards(ctx, sqlite.TimecardFilter{
		UserIDs:  []string{caller.ID},
		DateFrom: &day,
		DateTo:   &day,
	})
	if err != nil {
		return nil, err
	}
	return s.mapper.Timecard.FromDatabaseSlice(dbCards)
}

// SendToInvoicing aggregates billable time matched by the request into an
// invoice grouped by project then resource and submits it. Only an upstream
// 201 marks the included entries billed; every other outcome leaves all
// timecard state untouched.
func (s *timecardServiceImpl) SendToInvoicing(ctx context.Context, caller domain.User, req ReportRequest) error {
	if !caller.HasInvoicingCredentials() {
		return errors.NewConfigurationError("siwapp url and token")
	}

	projectIDs, err := s.resolver.ResolveProjects(ctx, caller.ID, req.ProjectIDs)
	if err != nil {
		return err
	}
	spec, err := reporting.BuildDetailedEntriesSelector(reporting.Scope{
		ProjectIDs: projectIDs,
		Period:     req.Period,
		Dates:      req.Dates,
		UserIDs:    req.UserIDs,
		Customer:   req.Customer,
	})
	if err != nil {
		return err
	}
	cards, _, err := s.executor.ExecuteDetailed(ctx, spec)
	if err != nil {
		return err
	}

	// Group hours by project, then by resource display name.
	entryIDs := make([]string, 0, len(cards))
	userIDs := make([]string, 0)
	seenUsers := make(map[string]bool)
	hoursByProjectResource := make(map[string]map[string]decimal.Decimal)
	for _, tc := range cards {
		entryIDs = append(entryIDs, tc.ID)
		if !seenUsers[tc.UserID] {
			seenUsers[tc.UserID] = true
			userIDs = append(userIDs, tc.UserID)
		}
		if hoursByProjectResource[tc.ProjectID] == nil {
			hoursByProjectResource[tc.ProjectID] = make(map[string]decimal.Decimal)
		}
		hoursByProjectResource[tc.ProjectID][tc.UserID] = hoursByProjectResource[tc.ProjectID][tc.UserID].
			Add(decimal.NewFromFloat(tc.Hours))
	}

	names, err := s.resourceNames(ctx, userIDs)
	if err != nil {
		return err
	}

	items, err := s.invoiceItems(ctx, caller, hoursByProjectResource, names)
	if err != nil {
		return err
	}
	invoice := invoicing.NewInvoice("from titra", s.now(), items)

	status, err := s.newInvoicer(caller.Profile.SiwappURL, caller.Profile.SiwappToken).Submit(ctx, invoice)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return errors.NewConfigurationError(fmt.Sprintf("siwapp submission returned status %d", status))
	}
	return s.repo.SetTimecardsState(ctx, entryIDs, string(domain.StateBilled))
}

func (s *timecardServiceImpl) resourceNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	dbUsers, err := s.repo.ListUsersByIDs(ctx, userIDs, false)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(dbUsers))
	for _, dbUser := range dbUsers {
		names[dbUser.ID] = dbUser.Name
	}
	return names, nil
}

// invoiceItems renders the grouped hours as invoice lines in a stable
// order.
func (s *timecardServiceImpl) invoiceItems(ctx context.Context, caller domain.User, grouped map[string]map[string]decimal.Decimal, names map[string]string) ([]invoicing.Item, error) {
	projectIDs := make([]string, 0, len(grouped))
	for projectID := range grouped {
		projectIDs = append(projectIDs, projectID)
	}
	sort.Strings(projectIDs)

	var items []invoicing.Item
	for _, projectID := range projectIDs {
		dbProject, err := s.repo.GetProject(ctx, projectID)
		if err != nil {
			return nil, err
		}

		resources := grouped[projectID]
		resourceIDs := make([]string, 0, len(resources))
		for userID := range resources {
			resourceIDs = append(resourceIDs, userID)
		}
		sort.Strings(resourceIDs)

		for _, userID := range resourceIDs {
			items = append(items, invoicing.Item{
				Description: fmt.Sprintf("%s (%s)", dbProject.Name, names[userID]),
				Quantity:    caller.TimeInUserUnit(resources[userID].InexactFloat64()),
				UnitaryCost: 0,
			})
		}
	}
	return items, nil
}

// FixCardReferences backfills card references on timecards that predate the
// kanban integration. Unmatched records are reported rather than failing
// the batch.
func (s *timecardServiceImpl) FixCardReferences(ctx context.Context) (*FixReport, error) {
	dbCards, err := s.repo.SearchTimecards(ctx, sqlite.TimecardFilter{MissingCardOnly: true})
	if err != nil {
		return nil, err
	}
	cards, err := s.mapper.Timecard.FromDatabaseSlice(dbCards)
	if err != nil {
		return nil, errors.NewDatabaseError("map timecards", err)
	}

	report := &FixReport{}
	projectCache := make(map[string]domain.Project)
	exportCache := make(map[string][]wekan.Card)

	for _, tc := range cards {
		project, ok := projectCache[tc.ProjectID]
		if !ok {
			dbProject, err := s.repo.GetProject(ctx, tc.ProjectID)
			if err != nil {
				report.Unmatched = append(report.Unmatched, UnmatchedTimecard{ID: tc.ID, Task: tc.Task})
				continue
			}
			project, err = s.mapper.Project.FromDatabase(*dbProject)
			if err != nil {
				return nil, errors.NewDatabaseError("map project", err)
			}
			projectCache[tc.ProjectID] = project
		}

		boardID := project.BoardID()
		if boardID == "" {
			report.Unmatched = append(report.Unmatched, UnmatchedTimecard{ID: tc.ID, Task: tc.Task})
			continue
		}

		boardCards, ok := exportCache[project.WekanURL]
		if !ok {
			boardCards, err = s.cardSource.FetchBoardCards(ctx, project.WekanURL)
			if err != nil {
				report.Unmatched = append(report.Unmatched, UnmatchedTimecard{ID: tc.ID, Task: tc.Task})
				continue
			}
			exportCache[project.WekanURL] = boardCards
		}

		card, found := wekan.FindCardByTitle(boardCards, tc.Task, boardID)
		if !found {
			report.Unmatched = append(report.Unmatched, UnmatchedTimecard{ID: tc.ID, Task: tc.Task})
			continue
		}

		err = s.upsertRaw(ctx, tc.UserID, TimecardInput{
			ProjectID: tc.ProjectID,
			Task:      tc.Task,
			CardID:    card.ID,
			Date:      tc.Date,
			Hours:     tc.Hours,
		})
		if err != nil {
			return nil, err
		}
		report.Fixed++
	}

	return report, nil
}

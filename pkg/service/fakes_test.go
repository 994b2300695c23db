package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

// memoryStore mirrors the repository semantics in memory so the service
// invariants can be exercised without a database.
type memoryStore struct {
	users    map[uint]*model.User
	alcohols map[uint]*model.Alcohol

	edges map[[2]uint]bool

	nextReviewID uint
	reviews      map[uint]*model.Review
	reports      map[uint]map[uint]bool
	helpful      map[uint]map[uint]bool
	banned       []*model.BannedReview

	wishlist   map[uint]map[uint]bool
	favourites map[uint]map[uint]bool

	nextTagID  uint
	tags       map[uint]*model.Tag
	tagEntries map[uint]map[uint]bool

	history []*model.SearchHistoryEntry

	facetRows    []repository.FacetComponents
	facetEntries []model.FacetEntry

	barcodes         map[string]uint
	nextSuggestionID uint
	suggestions      map[uint]*model.AlcoholSuggestion
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[uint]*model.User),
		alcohols:    make(map[uint]*model.Alcohol),
		edges:       make(map[[2]uint]bool),
		reviews:     make(map[uint]*model.Review),
		reports:     make(map[uint]map[uint]bool),
		helpful:     make(map[uint]map[uint]bool),
		wishlist:    make(map[uint]map[uint]bool),
		favourites:  make(map[uint]map[uint]bool),
		tags:        make(map[uint]*model.Tag),
		tagEntries:  make(map[uint]map[uint]bool),
		barcodes:    make(map[string]uint),
		suggestions: make(map[uint]*model.AlcoholSuggestion),
	}
}

func (m *memoryStore) addUser(user model.User) *model.User {
	m.users[user.ID] = &user

	return &user
}

func (m *memoryStore) addAlcohol(alcohol model.Alcohol) *model.Alcohol {
	m.alcohols[alcohol.ID] = &alcohol

	return &alcohol
}

func (m *memoryStore) GetUserByID(_ context.Context, userID uint) (*model.User, error) {
	user, found := m.users[userID]
	if !found {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (m *memoryStore) GetAlcoholByID(_ context.Context, alcoholID uint) (*model.Alcohol, error) {
	alcohol, found := m.alcohols[alcoholID]
	if !found {
		return nil, repository.ErrAlcoholNotFound
	}

	return alcohol, nil
}

func (m *memoryStore) AddFollow(_ context.Context, followerID uint, followeeID uint) (bool, error) {
	key := [2]uint{followerID, followeeID}
	if m.edges[key] {
		return false, nil
	}

	m.edges[key] = true
	m.users[followerID].FollowingCount++
	m.users[followeeID].FollowersCount++

	return true, nil
}

func (m *memoryStore) RemoveFollow(_ context.Context, followerID uint, followeeID uint) (bool, error) {
	key := [2]uint{followerID, followeeID}
	if !m.edges[key] {
		return false, nil
	}

	delete(m.edges, key)
	m.users[followerID].FollowingCount--
	m.users[followeeID].FollowersCount--

	return true, nil
}

func (m *memoryStore) IsFollowing(_ context.Context, followerID uint, followeeID uint) (bool, error) {
	return m.edges[[2]uint{followerID, followeeID}], nil
}

func (m *memoryStore) GetFollowers(_ context.Context, userID uint, _ int, _ int) ([]*model.User, error) {
	var users []*model.User

	for edge := range m.edges {
		if edge[1] == userID {
			users = append(users, m.users[edge[0]])
		}
	}

	sortUsers(users)

	return users, nil
}

func (m *memoryStore) GetFollowing(_ context.Context, userID uint, _ int, _ int) ([]*model.User, error) {
	var users []*model.User

	for edge := range m.edges {
		if edge[0] == userID {
			users = append(users, m.users[edge[1]])
		}
	}

	sortUsers(users)

	return users, nil
}

func (m *memoryStore) ReconcileSocialCounters(_ context.Context) (int64, error) {
	var repaired int64

	for id, user := range m.users {
		var following, followers uint64

		for edge := range m.edges {
			if edge[0] == id {
				following++
			}

			if edge[1] == id {
				followers++
			}
		}

		if user.FollowingCount != following || user.FollowersCount != followers {
			user.FollowingCount = following
			user.FollowersCount = followers
			repaired++
		}
	}

	return repaired, nil
}

func (m *memoryStore) CreateReview(_ context.Context, review model.Review) (*model.Review, error) {
	m.nextReviewID++
	review.ID = m.nextReviewID
	review.CreatedAt = time.Now()
	m.reviews[review.ID] = &review

	m.applyRating(review.AlcoholID, review.UserID, review.Rating, 1)

	return &review, nil
}

func (m *memoryStore) UpdateReviewRating(_ context.Context, reviewID uint, newRating int, body *string) (*model.Review, error) {
	review, found := m.reviews[reviewID]
	if !found {
		return nil, repository.ErrReviewNotFound
	}

	delta := newRating - review.Rating
	review.Rating = newRating
	review.Body = body

	m.applyRating(review.AlcoholID, review.UserID, delta, 0)

	return review, nil
}

func (m *memoryStore) DeleteReview(_ context.Context, reviewID uint) error {
	review, found := m.reviews[reviewID]
	if !found {
		return repository.ErrReviewNotFound
	}

	delete(m.reviews, reviewID)
	delete(m.reports, reviewID)
	delete(m.helpful, reviewID)

	m.applyRating(review.AlcoholID, review.UserID, -review.Rating, -1)

	return nil
}

// applyRating mimics the single-statement accumulator arithmetic.
func (m *memoryStore) applyRating(alcoholID uint, userID uint, valueDelta int, countDelta int) {
	apply := func(count *uint64, value *uint64, avg *float64) {
		*count = uint64(int64(*count) + int64(countDelta))
		*value = uint64(int64(*value) + int64(valueDelta))

		if *count == 0 {
			*avg = 0
		} else {
			*avg = float64(*value) / float64(*count)
		}
	}

	if alcohol, found := m.alcohols[alcoholID]; found {
		apply(&alcohol.RateCount, &alcohol.RateValue, &alcohol.AvgRating)
	}

	if user, found := m.users[userID]; found {
		apply(&user.RateCount, &user.RateValue, &user.AvgRating)
	}
}

func (m *memoryStore) GetReviewByID(_ context.Context, reviewID uint) (*model.Review, error) {
	review, found := m.reviews[reviewID]
	if !found {
		return nil, repository.ErrReviewNotFound
	}

	return review, nil
}

func (m *memoryStore) GetAlcoholReviews(_ context.Context, alcoholID uint, _ int, _ int) ([]*model.Review, error) {
	var reviews []*model.Review

	for _, review := range m.reviews {
		if review.AlcoholID == alcoholID {
			reviews = append(reviews, review)
		}
	}

	return reviews, nil
}

func (m *memoryStore) GetUserReviews(_ context.Context, userID uint, _ int, _ int) ([]*model.Review, error) {
	var reviews []*model.Review

	for _, review := range m.reviews {
		if review.UserID == userID {
			reviews = append(reviews, review)
		}
	}

	return reviews, nil
}

func (m *memoryStore) HasReview(_ context.Context, userID uint, alcoholID uint) (bool, error) {
	for _, review := range m.reviews {
		if review.UserID == userID && review.AlcoholID == alcoholID {
			return true, nil
		}
	}

	return false, nil
}

func (m *memoryStore) RecomputeAlcoholRating(_ context.Context, alcoholID uint) error {
	alcohol, found := m.alcohols[alcoholID]
	if !found {
		return repository.ErrAlcoholNotFound
	}

	var count, value uint64

	for _, review := range m.reviews {
		if review.AlcoholID == alcoholID {
			count++
			value += uint64(review.Rating)
		}
	}

	alcohol.RateCount = count
	alcohol.RateValue = value

	if count == 0 {
		alcohol.AvgRating = 0
	} else {
		alcohol.AvgRating = float64(value) / float64(count)
	}

	return nil
}

func (m *memoryStore) AddReport(_ context.Context, reviewID uint, reporterID uint) (int64, error) {
	review, found := m.reviews[reviewID]
	if !found {
		return 0, repository.ErrReviewNotFound
	}

	if m.reports[reviewID] == nil {
		m.reports[reviewID] = make(map[uint]bool)
	}

	if !m.reports[reviewID][reporterID] {
		m.reports[reviewID][reporterID] = true
		review.ReportCount++
	}

	return review.ReportCount, nil
}

func (m *memoryStore) AddHelpfulVote(_ context.Context, reviewID uint, voterID uint) (int64, error) {
	review, found := m.reviews[reviewID]
	if !found {
		return 0, repository.ErrReviewNotFound
	}

	if m.helpful[reviewID] == nil {
		m.helpful[reviewID] = make(map[uint]bool)
	}

	if !m.helpful[reviewID][voterID] {
		m.helpful[reviewID][voterID] = true
		review.HelpfulCount++
	}

	return review.HelpfulCount, nil
}

func (m *memoryStore) GetReporters(_ context.Context, reviewID uint) ([]uint, error) {
	return m.reporterIDs(reviewID), nil
}

func (m *memoryStore) reporterIDs(reviewID uint) []uint {
	var reporters []uint
	for reporter := range m.reports[reviewID] {
		reporters = append(reporters, reporter)
	}

	sort.Slice(reporters, func(i, j int) bool { return reporters[i] < reporters[j] })

	return reporters
}

func (m *memoryStore) ListReported(_ context.Context, threshold int, _ int, _ int) ([]*model.Review, error) {
	var reviews []*model.Review

	for _, review := range m.reviews {
		if review.ReportCount >= int64(threshold) {
			reviews = append(reviews, review)
		}
	}

	return reviews, nil
}

func (m *memoryStore) BanReview(_ context.Context, reviewID uint, reason *string, adminID uint, revertRating bool) (*model.BannedReview, error) {
	review, found := m.reviews[reviewID]
	if !found {
		return nil, repository.ErrReviewNotFound
	}

	banned := &model.BannedReview{
		ReviewID:    review.ID,
		UserID:      review.UserID,
		Username:    review.Username,
		AlcoholID:   review.AlcoholID,
		Body:        review.Body,
		Rating:      review.Rating,
		ReviewedOn:  review.CreatedAt,
		ReportCount: review.ReportCount,
		Reporters:   m.reporterIDs(reviewID),
		Reason:      reason,
		BannedBy:    adminID,
		BanDate:     time.Now().UTC(),
	}

	delete(m.reviews, reviewID)
	delete(m.reports, reviewID)
	delete(m.helpful, reviewID)

	if revertRating {
		m.applyRating(review.AlcoholID, review.UserID, -review.Rating, -1)
	}

	m.banned = append(m.banned, banned)

	return banned, nil
}

func (m *memoryStore) GetBannedReviews(_ context.Context, alcoholID uint, _ int, _ int) ([]*model.BannedReview, error) {
	var banned []*model.BannedReview

	for _, entry := range m.banned {
		if entry.AlcoholID == alcoholID {
			banned = append(banned, entry)
		}
	}

	return banned, nil
}

func (m *memoryStore) AddToWishlist(_ context.Context, userID uint, alcoholID uint) (bool, error) {
	return addMember(m.wishlist, userID, alcoholID), nil
}

func (m *memoryStore) RemoveFromWishlist(_ context.Context, userID uint, alcoholID uint) (bool, error) {
	return removeMember(m.wishlist, userID, alcoholID), nil
}

func (m *memoryStore) GetWishlist(_ context.Context, userID uint, _ int, _ int) ([]*model.WishlistEntry, error) {
	var entries []*model.WishlistEntry

	for alcoholID := range m.wishlist[userID] {
		entries = append(entries, &model.WishlistEntry{UserID: userID, AlcoholID: alcoholID})
	}

	return entries, nil
}

func (m *memoryStore) AddToFavourites(_ context.Context, userID uint, alcoholID uint) (bool, error) {
	added := addMember(m.favourites, userID, alcoholID)
	if added {
		m.users[userID].FavouritesCount++
	}

	return added, nil
}

func (m *memoryStore) RemoveFromFavourites(_ context.Context, userID uint, alcoholID uint) (bool, error) {
	removed := removeMember(m.favourites, userID, alcoholID)
	if removed {
		m.users[userID].FavouritesCount--
	}

	return removed, nil
}

func (m *memoryStore) GetFavourites(_ context.Context, userID uint, _ int, _ int) ([]*model.FavouriteEntry, error) {
	var entries []*model.FavouriteEntry

	for alcoholID := range m.favourites[userID] {
		entries = append(entries, &model.FavouriteEntry{UserID: userID, AlcoholID: alcoholID})
	}

	return entries, nil
}

func (m *memoryStore) CreateTag(_ context.Context, userID uint, name string) (*model.Tag, error) {
	m.nextTagID++
	tag := &model.Tag{UserID: userID, Name: name}
	tag.ID = m.nextTagID
	m.tags[tag.ID] = tag

	return tag, nil
}

func (m *memoryStore) RenameTag(_ context.Context, tagID uint, name string) error {
	tag, found := m.tags[tagID]
	if !found {
		return repository.ErrTagNotFound
	}

	tag.Name = name

	return nil
}

func (m *memoryStore) DeleteTag(_ context.Context, tagID uint) error {
	delete(m.tags, tagID)
	delete(m.tagEntries, tagID)

	return nil
}

func (m *memoryStore) GetTag(_ context.Context, tagID uint) (*model.Tag, error) {
	tag, found := m.tags[tagID]
	if !found {
		return nil, repository.ErrTagNotFound
	}

	return tag, nil
}

func (m *memoryStore) GetUserTags(_ context.Context, userID uint, _ int, _ int) ([]*model.Tag, error) {
	var tags []*model.Tag

	for _, tag := range m.tags {
		if tag.UserID == userID {
			tags = append(tags, tag)
		}
	}

	return tags, nil
}

func (m *memoryStore) AddToTag(_ context.Context, tagID uint, alcoholID uint) (bool, error) {
	return addMember(m.tagEntries, tagID, alcoholID), nil
}

func (m *memoryStore) RemoveFromTag(_ context.Context, tagID uint, alcoholID uint) (bool, error) {
	return removeMember(m.tagEntries, tagID, alcoholID), nil
}

func (m *memoryStore) GetTagAlcohols(_ context.Context, tagID uint, _ int, _ int) ([]*model.TagEntry, error) {
	var entries []*model.TagEntry

	for alcoholID := range m.tagEntries[tagID] {
		entries = append(entries, &model.TagEntry{TagID: tagID, AlcoholID: alcoholID})
	}

	return entries, nil
}

func (m *memoryStore) AppendSearchHistory(_ context.Context, userID uint, alcoholID uint) error {
	m.history = append(m.history, &model.SearchHistoryEntry{UserID: userID, AlcoholID: alcoholID, SearchedAt: time.Now()})

	return nil
}

func (m *memoryStore) GetSearchHistory(_ context.Context, userID uint, _ int, _ int) ([]*model.SearchHistoryEntry, error) {
	var entries []*model.SearchHistoryEntry

	for _, entry := range m.history {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (m *memoryStore) ClearSearchHistory(_ context.Context, userID uint) error {
	var kept []*model.SearchHistoryEntry

	for _, entry := range m.history {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}

	m.history = kept

	return nil
}

func (m *memoryStore) GetFacetComponents(_ context.Context) ([]repository.FacetComponents, error) {
	return m.facetRows, nil
}

func (m *memoryStore) ReplaceFacets(_ context.Context, entries []model.FacetEntry) error {
	m.facetEntries = entries

	return nil
}

func (m *memoryStore) GetFacets(_ context.Context) ([]*model.FacetEntry, error) {
	entries := make([]*model.FacetEntry, 0, len(m.facetEntries))
	for index := range m.facetEntries {
		entries = append(entries, &m.facetEntries[index])
	}

	return entries, nil
}

func (m *memoryStore) GetFacetsForGroup(_ context.Context, group string) (*model.FacetEntry, error) {
	for index := range m.facetEntries {
		if m.facetEntries[index].Group == group {
			return &m.facetEntries[index], nil
		}
	}

	return nil, gorm.ErrRecordNotFound
}

func (m *memoryStore) AddUser(_ context.Context, username string, email string, passwordHash string, verificationCode string) (*model.User, error) {
	for _, existing := range m.users {
		if existing.Username == username || existing.Email == email {
			return nil, gorm.ErrDuplicatedKey
		}
	}

	user := model.User{
		UUID:             uuid.New(),
		Username:         username,
		Email:            email,
		PasswordHash:     passwordHash,
		VerificationCode: &verificationCode,
	}
	user.ID = uint(len(m.users) + 1)
	m.users[user.ID] = &user

	return &user, nil
}

func (m *memoryStore) GetUserByName(_ context.Context, username string) (*model.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (m *memoryStore) GetUserFromEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (m *memoryStore) ConsumeVerificationCode(_ context.Context, code string) (*model.User, error) {
	for _, user := range m.users {
		if user.VerificationCode != nil && *user.VerificationCode == code {
			user.VerificationCode = nil
			user.IsVerified = true

			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (m *memoryStore) SetResetPasswordCode(_ context.Context, userID uint, code string) error {
	user, found := m.users[userID]
	if !found {
		return repository.ErrUserNotFound
	}

	user.ResetPasswordCode = &code

	return nil
}

func (m *memoryStore) ConsumeResetPasswordCode(_ context.Context, code string, newPasswordHash string) (*model.User, error) {
	for _, user := range m.users {
		if user.ResetPasswordCode != nil && *user.ResetPasswordCode == code {
			user.ResetPasswordCode = nil
			user.PasswordHash = newPasswordHash

			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (m *memoryStore) SetDeleteAccountCode(_ context.Context, userID uint, code string) error {
	user, found := m.users[userID]
	if !found {
		return repository.ErrUserNotFound
	}

	user.DeleteAccountCode = &code

	return nil
}

func (m *memoryStore) ConsumeDeleteAccountCode(_ context.Context, code string) (*model.User, error) {
	for _, user := range m.users {
		if user.DeleteAccountCode != nil && *user.DeleteAccountCode == code {
			user.DeleteAccountCode = nil

			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (m *memoryStore) UpdateLastLogin(_ context.Context, userID uint) error {
	user, found := m.users[userID]
	if !found {
		return repository.ErrUserNotFound
	}

	now := time.Now()
	user.LastLogin = &now

	return nil
}

func (m *memoryStore) SetUserBanned(_ context.Context, userID uint, banned bool) error {
	user, found := m.users[userID]
	if !found {
		return repository.ErrUserNotFound
	}

	user.IsBanned = banned

	return nil
}

func (m *memoryStore) DeleteUser(_ context.Context, userID uint) error {
	if _, found := m.users[userID]; !found {
		return repository.ErrUserNotFound
	}

	delete(m.users, userID)
	delete(m.wishlist, userID)
	delete(m.favourites, userID)

	for edge := range m.edges {
		if edge[0] != userID && edge[1] != userID {
			continue
		}

		if edge[0] == userID {
			if followee, found := m.users[edge[1]]; found && followee.FollowersCount > 0 {
				followee.FollowersCount--
			}
		} else {
			if follower, found := m.users[edge[0]]; found && follower.FollowingCount > 0 {
				follower.FollowingCount--
			}
		}

		delete(m.edges, edge)
	}

	return nil
}

func (m *memoryStore) GetAlcoholByBarcode(_ context.Context, barcode string) (*model.Alcohol, error) {
	alcoholID, found := m.barcodes[barcode]
	if !found {
		return nil, repository.ErrAlcoholNotFound
	}

	return m.alcohols[alcoholID], nil
}

func (m *memoryStore) AddAlcohol(_ context.Context, alcohol model.Alcohol) (*model.Alcohol, error) {
	if alcohol.ID == 0 {
		alcohol.ID = uint(len(m.alcohols) + 1)
	}

	m.alcohols[alcohol.ID] = &alcohol

	for _, barcode := range alcohol.Barcodes {
		m.barcodes[barcode.Code] = alcohol.ID
	}

	return &alcohol, nil
}

func (m *memoryStore) UpdateAlcohol(_ context.Context, alcohol *model.Alcohol) (*model.Alcohol, error) {
	if _, found := m.alcohols[alcohol.ID]; !found {
		return nil, repository.ErrAlcoholNotFound
	}

	m.alcohols[alcohol.ID] = alcohol

	return alcohol, nil
}

func (m *memoryStore) DeleteAlcohol(_ context.Context, alcoholID uint) error {
	if _, found := m.alcohols[alcoholID]; !found {
		return repository.ErrAlcoholNotFound
	}

	delete(m.alcohols, alcoholID)

	for code, id := range m.barcodes {
		if id == alcoholID {
			delete(m.barcodes, code)
		}
	}

	return nil
}

func (m *memoryStore) SearchAlcohols(_ context.Context, query string, _ int, _ int) ([]*model.Alcohol, error) {
	var matches []*model.Alcohol

	for _, alcohol := range m.alcohols {
		if strings.Contains(strings.ToLower(alcohol.Name), strings.ToLower(query)) {
			matches = append(matches, alcohol)
		}
	}

	return matches, nil
}

func (m *memoryStore) UpsertSuggestion(_ context.Context, barcode string, userID uint, kind *string, name *string, description *string) (*model.AlcoholSuggestion, error) {
	for _, suggestion := range m.suggestions {
		if suggestion.Barcode != barcode {
			continue
		}

		known := false

		for _, existing := range suggestion.UserIDs {
			if existing == userID {
				known = true
			}
		}

		if !known {
			suggestion.UserIDs = append(suggestion.UserIDs, userID)
		}

		if description != nil {
			suggestion.Descriptions = append(suggestion.Descriptions, *description)
		}

		return suggestion, nil
	}

	m.nextSuggestionID++
	suggestion := &model.AlcoholSuggestion{Barcode: barcode, Kind: kind, Name: name, UserIDs: []uint{userID}}
	suggestion.ID = m.nextSuggestionID

	if description != nil {
		suggestion.Descriptions = []string{*description}
	}

	m.suggestions[suggestion.ID] = suggestion

	return suggestion, nil
}

func (m *memoryStore) ListSuggestions(_ context.Context, _ int, _ int) ([]*model.AlcoholSuggestion, error) {
	var suggestions []*model.AlcoholSuggestion

	for _, suggestion := range m.suggestions {
		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

func (m *memoryStore) DeleteSuggestion(_ context.Context, suggestionID uint) error {
	if _, found := m.suggestions[suggestionID]; !found {
		return repository.ErrSuggestionNotFound
	}

	delete(m.suggestions, suggestionID)

	return nil
}

func addMember(sets map[uint]map[uint]bool, owner uint, member uint) bool {
	if sets[owner] == nil {
		sets[owner] = make(map[uint]bool)
	}

	if sets[owner][member] {
		return false
	}

	sets[owner][member] = true

	return true
}

func removeMember(sets map[uint]map[uint]bool, owner uint, member uint) bool {
	if !sets[owner][member] {
		return false
	}

	delete(sets[owner], member)

	return true
}

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func sortUsers(users []*model.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}

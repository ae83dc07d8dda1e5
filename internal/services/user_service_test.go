package services

import (
	"context"
	"testing"

	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	userRepo    *MockUserRepository
	companyRepo *MockCompanyRepository
	tokens      *MockRefreshTokenService
	actionLog   *MockActionLogService
	hasher      *PasswordHasher
	service     UserService
	ctx         context.Context
	actorID     uuid.UUID
	company     *models.Company
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.userRepo = &MockUserRepository{}
	suite.companyRepo = &MockCompanyRepository{}
	suite.tokens = &MockRefreshTokenService{}
	suite.actionLog = &MockActionLogService{}
	suite.hasher = NewPasswordHasher()
	suite.ctx = context.Background()
	suite.actorID = uuid.New()
	suite.company = &models.Company{Code: uuid.New(), Name: "Head Office", IsActive: true}

	policy := NewPasswordPolicy(10, []string{"password"})
	suite.service = NewUserService(suite.userRepo, suite.companyRepo, suite.hasher, policy, suite.tokens, suite.actionLog)

	suite.userRepo.Test(suite.T())
	suite.companyRepo.Test(suite.T())
	suite.tokens.Test(suite.T())
	suite.actionLog.Test(suite.T())

	suite.actionLog.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestCreate_DenormalizesCompanyAndHashesPassword() {
	suite.companyRepo.On("GetByCode", suite.ctx, suite.company.Code).Return(suite.company, nil)

	var stored *models.User
	suite.userRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.User) }).
		Return(nil)

	user, err := suite.service.Create(suite.ctx, suite.actorID, &CreateUserInput{
		Username:    "admin",
		Password:    "Razavi@1404",
		Roles:       []string{"viewer", "Viewer", "CompanyAdmin"},
		CompanyCode: suite.company.Code,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Head Office", stored.CompanyName)
	assert.True(suite.T(), stored.CompanyActive)
	assert.True(suite.T(), stored.IsActive)
	assert.NotEqual(suite.T(), "Razavi@1404", stored.PasswordHash)
	assert.True(suite.T(), suite.hasher.Verify(stored.PasswordHash, "Razavi@1404"))
	// Roles are deduped case-insensitively.
	assert.Len(suite.T(), user.Roles, 2)
}

func (suite *UserServiceTestSuite) TestCreate_UnknownCompanyRejected() {
	code := uuid.New()
	suite.companyRepo.On("GetByCode", suite.ctx, code).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Create(suite.ctx, suite.actorID, &CreateUserInput{
		Username:    "admin",
		Password:    "Razavi@1404",
		CompanyCode: code,
	})

	assert.ErrorIs(suite.T(), err, ErrUnknownCompany)
	suite.userRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreate_DuplicateUsernamePassesThrough() {
	suite.companyRepo.On("GetByCode", suite.ctx, suite.company.Code).Return(suite.company, nil)
	suite.userRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.User")).
		Return(repositories.ErrDuplicateUsername)

	_, err := suite.service.Create(suite.ctx, suite.actorID, &CreateUserInput{
		Username:    "admin",
		Password:    "Razavi@1404",
		CompanyCode: suite.company.Code,
	})

	assert.ErrorIs(suite.T(), err, repositories.ErrDuplicateUsername)
}

func (suite *UserServiceTestSuite) TestCreate_WeakPasswordRejected() {
	_, err := suite.service.Create(suite.ctx, suite.actorID, &CreateUserInput{
		Username:    "admin",
		Password:    "short",
		CompanyCode: suite.company.Code,
	})

	assert.ErrorIs(suite.T(), err, ErrWeakPassword)
}

func (suite *UserServiceTestSuite) TestUpdate_DeactivationRevokesSessions() {
	user := &models.User{
		ID:          uuid.New(),
		Username:    "admin",
		DisplayName: "Administrator",
		Roles:       []string{models.RoleViewer},
		CompanyCode: suite.company.Code,
		IsActive:    true,
	}
	inactive := false

	suite.userRepo.On("Update", suite.ctx, user).Return(nil)
	suite.tokens.On("RevokeAllForUser", suite.ctx, user.ID, models.RevokeReasonInactiveUser).
		Return(int64(2), nil)

	updated, err := suite.service.Update(suite.ctx, suite.actorID, user, &UpdateUserInput{IsActive: &inactive})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), updated.IsActive)
	suite.tokens.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdate_NoChangesSkipsWrite() {
	user := &models.User{
		ID:          uuid.New(),
		DisplayName: "Administrator",
		IsActive:    true,
	}

	_, err := suite.service.Update(suite.ctx, suite.actorID, user, &UpdateUserInput{})

	assert.NoError(suite.T(), err)
	suite.userRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestChangePassword_Success() {
	currentHash, _ := suite.hasher.Hash("Razavi@1404")
	user := &models.User{ID: uuid.New(), Username: "admin", PasswordHash: currentHash, IsActive: true}

	suite.userRepo.On("GetByID", suite.ctx, user.ID).Return(user, nil)
	suite.userRepo.On("UpdatePassword", suite.ctx, user.ID, mock.AnythingOfType("string")).Return(nil)
	suite.tokens.On("RevokeAllForUser", suite.ctx, user.ID, models.RevokeReasonPasswordChanged).
		Return(int64(3), nil)

	revoked, err := suite.service.ChangePassword(suite.ctx, user.ID, "Razavi@1404", "Sturdy@9881", "10.0.0.1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), revoked)
}

func (suite *UserServiceTestSuite) TestChangePassword_WrongCurrent() {
	currentHash, _ := suite.hasher.Hash("Razavi@1404")
	user := &models.User{ID: uuid.New(), Username: "admin", PasswordHash: currentHash}

	suite.userRepo.On("GetByID", suite.ctx, user.ID).Return(user, nil)

	_, err := suite.service.ChangePassword(suite.ctx, user.ID, "not-the-password", "Sturdy@9881", "10.0.0.1")

	assert.ErrorIs(suite.T(), err, ErrWrongPassword)
	suite.userRepo.AssertNotCalled(suite.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestChangePassword_RejectsReuse() {
	currentHash, _ := suite.hasher.Hash("Razavi@1404")
	user := &models.User{ID: uuid.New(), Username: "admin", PasswordHash: currentHash}

	suite.userRepo.On("GetByID", suite.ctx, user.ID).Return(user, nil)

	_, err := suite.service.ChangePassword(suite.ctx, user.ID, "Razavi@1404", "Razavi@1404", "10.0.0.1")

	assert.ErrorIs(suite.T(), err, ErrSamePassword)
}

package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/services"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

type RuleServiceTestSuite struct {
	suite.Suite
	mockRuleRepo  *MockRuleRepository
	mockPointRepo *MockDeclarationPointRepository
	service       *services.RuleService
}

func (suite *RuleServiceTestSuite) SetupTest() {
	suite.mockRuleRepo = new(MockRuleRepository)
	suite.mockPointRepo = new(MockDeclarationPointRepository)
	suite.service = services.NewRuleService(suite.mockRuleRepo, suite.mockPointRepo, nil)
}

func validConditions() json.RawMessage {
	return json.RawMessage(`{"root_logic":"AND","groups":[{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"salary"}]}]}`)
}

func (suite *RuleServiceTestSuite) TestCreateRule_CategorySuccess() {
	ctx := context.Background()
	pointID := "point-1"
	suite.mockPointRepo.On("FindPointByID", ctx, pointID).
		Return(&models.DeclarationPoint{DeclarationPointID: pointID, Name: "Point 7.1"}, nil).Once()
	suite.mockRuleRepo.On("SaveRule", ctx, mock.Anything).Return(nil).Once()

	rule, err := suite.service.CreateRule(ctx, dto.CreateRuleRequest{
		Domain:        "CATEGORY",
		Name:          "Salary",
		Priority:      10,
		Conditions:    validConditions(),
		ResultPointID: &pointID,
	}, "user-1")

	suite.Require().NoError(err)
	suite.NotEmpty(rule.RuleID)
	suite.True(rule.IsActive)
	suite.Equal(models.ProposalNone, rule.ProposalStatus)
	suite.Require().NotNil(rule.ResultPointID)
	suite.Equal(pointID, *rule.ResultPointID)
}

func (suite *RuleServiceTestSuite) TestCreateRule_MalformedConditionsRejected() {
	ctx := context.Background()
	pointID := "point-1"
	suite.mockPointRepo.On("FindPointByID", ctx, pointID).
		Return(&models.DeclarationPoint{DeclarationPointID: pointID}, nil).Once()

	_, err := suite.service.CreateRule(ctx, dto.CreateRuleRequest{
		Domain:        "CATEGORY",
		Name:          "Broken",
		Priority:      10,
		Conditions:    json.RawMessage(`{"root_logic":`),
		ResultPointID: &pointID,
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRuleRepo.AssertNotCalled(suite.T(), "SaveRule", mock.Anything, mock.Anything)
}

func (suite *RuleServiceTestSuite) TestCreateRule_AutoFilledTargetRejected() {
	ctx := context.Background()
	pointID := "point-auto"
	suite.mockPointRepo.On("FindPointByID", ctx, pointID).
		Return(&models.DeclarationPoint{DeclarationPointID: pointID, IsAutoFilled: true}, nil).Once()

	_, err := suite.service.CreateRule(ctx, dto.CreateRuleRequest{
		Domain:        "CATEGORY",
		Name:          "Bad Target",
		Priority:      10,
		Conditions:    validConditions(),
		ResultPointID: &pointID,
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_EntityTypeResultValidated() {
	ctx := context.Background()

	_, err := suite.service.CreateRule(ctx, dto.CreateRuleRequest{
		Domain:           "ENTITY_TYPE",
		Name:             "Bad Result",
		Priority:         10,
		Conditions:       validConditions(),
		ResultEntityType: "UNDETERMINED",
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestCreateRule_DuplicateNameSurfaces() {
	ctx := context.Background()
	pointID := "point-1"
	suite.mockPointRepo.On("FindPointByID", ctx, pointID).
		Return(&models.DeclarationPoint{DeclarationPointID: pointID}, nil).Once()
	suite.mockRuleRepo.On("SaveRule", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateRule(ctx, dto.CreateRuleRequest{
		Domain:        "CATEGORY",
		Name:          "Salary",
		Priority:      10,
		Conditions:    validConditions(),
		ResultPointID: &pointID,
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *RuleServiceTestSuite) TestProposeGlobal_OnlyScopedCategoryRules() {
	ctx := context.Background()
	global := &models.Rule{RuleID: "rule-g", Domain: models.DomainCategory, Name: "Global"}
	suite.mockRuleRepo.On("FindRuleByID", ctx, "rule-g").Return(global, nil).Once()

	_, err := suite.service.ProposeGlobal(ctx, "rule-g", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RuleServiceTestSuite) TestPromoteToGlobal_ClearsScope() {
	ctx := context.Background()
	declID := "decl-1"
	rule := &models.Rule{
		RuleID:         "rule-1",
		Domain:         models.DomainCategory,
		Name:           "Payroll from ACME",
		DeclarationID:  &declID,
		ProposalStatus: models.ProposalPendingGlobal,
	}
	suite.mockRuleRepo.On("FindRuleByID", ctx, "rule-1").Return(rule, nil).Once()
	suite.mockRuleRepo.On("UpdateRule", ctx, rule).Return(nil).Once()

	promoted, err := suite.service.PromoteToGlobal(ctx, "rule-1", "admin-1")

	suite.Require().NoError(err)
	suite.Nil(promoted.DeclarationID)
	suite.Equal(models.ProposalNone, promoted.ProposalStatus)
}

func (suite *RuleServiceTestSuite) TestPromoteToGlobal_RequiresProposal() {
	ctx := context.Background()
	declID := "decl-1"
	rule := &models.Rule{RuleID: "rule-2", Domain: models.DomainCategory, DeclarationID: &declID, ProposalStatus: models.ProposalNone}
	suite.mockRuleRepo.On("FindRuleByID", ctx, "rule-2").Return(rule, nil).Once()

	_, err := suite.service.PromoteToGlobal(ctx, "rule-2", "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRuleRepo.AssertNotCalled(suite.T(), "UpdateRule", mock.Anything, mock.Anything)
}

func (suite *RuleServiceTestSuite) TestUpdateRule_RevalidatesConditions() {
	ctx := context.Background()
	pointID := "point-1"
	rule := &models.Rule{RuleID: "rule-3", Domain: models.DomainCategory, Name: "Salary", ResultPointID: &pointID, Conditions: validConditions()}
	suite.mockRuleRepo.On("FindRuleByID", ctx, "rule-3").Return(rule, nil).Once()

	_, err := suite.service.UpdateRule(ctx, "rule-3", dto.UpdateRuleRequest{
		Conditions: json.RawMessage(`[`),
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRuleRepo.AssertNotCalled(suite.T(), "UpdateRule", mock.Anything, mock.Anything)
}

func TestRuleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RuleServiceTestSuite))
}

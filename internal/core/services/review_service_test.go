package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/services"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	mockReviewRepo *MockReviewQueueRepository
	mockTxnRepo    *MockTransactionRepository
	mockPointRepo  *MockDeclarationPointRepository
	mockRuleRepo   *MockRuleRepository
	service        *services.ReviewService
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.mockReviewRepo = new(MockReviewQueueRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockPointRepo = new(MockDeclarationPointRepository)
	suite.mockRuleRepo = new(MockRuleRepository)
	suite.service = services.NewReviewService(suite.mockReviewRepo, suite.mockTxnRepo, suite.mockPointRepo, suite.mockRuleRepo, nil)
}

func (suite *ReviewServiceTestSuite) TestResolve_Success() {
	ctx := context.Background()
	entry := &models.ReviewEntry{ReviewID: "rev-1", TransactionID: "txn-1", Status: models.ReviewPending}
	point := &models.DeclarationPoint{DeclarationPointID: "point-1", Name: "Point 7.1 Salary", IsIncome: true}
	txn := &models.Transaction{TransactionID: "txn-1", Description: "salary march", Amount: decimal.NewFromInt(300000)}

	suite.mockReviewRepo.On("FindEntryByID", ctx, "rev-1").Return(entry, nil).Once()
	suite.mockPointRepo.On("FindPointByID", ctx, "point-1").Return(point, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "txn-1").Return(txn, nil).Once()
	suite.mockTxnRepo.On("SetCategory", ctx, "txn-1", "point-1", "user-1").Return(nil).Once()
	suite.mockReviewRepo.On("UpdateEntry", ctx, entry).Return(nil).Once()

	resolved, err := suite.service.Resolve(ctx, "rev-1", dto.ResolveReviewRequest{ResolvedPointID: "point-1"}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(models.ReviewResolved, resolved.Status)
	suite.Equal("Point 7.1 Salary", resolved.ResolvedPoint)
	suite.Require().NotNil(resolved.ResolutionDate)
	suite.Empty(resolved.RuleProposal)
}

func (suite *ReviewServiceTestSuite) TestResolve_WithProposalCapture() {
	ctx := context.Background()
	entry := &models.ReviewEntry{ReviewID: "rev-2", TransactionID: "txn-2", Status: models.ReviewPending}
	point := &models.DeclarationPoint{DeclarationPointID: "point-1", Name: "Point 7.1 Salary", IsIncome: true}
	txn := &models.Transaction{TransactionID: "txn-2", Description: "ACME LLC payroll", Amount: decimal.NewFromInt(420000)}

	suite.mockReviewRepo.On("FindEntryByID", ctx, "rev-2").Return(entry, nil).Once()
	suite.mockPointRepo.On("FindPointByID", ctx, "point-1").Return(point, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "txn-2").Return(txn, nil).Once()
	suite.mockTxnRepo.On("SetCategory", ctx, "txn-2", "point-1", "user-1").Return(nil).Once()
	suite.mockReviewRepo.On("UpdateEntry", ctx, entry).Return(nil).Once()

	resolved, err := suite.service.Resolve(ctx, "rev-2", dto.ResolveReviewRequest{
		ResolvedPointID: "point-1",
		ProposeRule:     true,
		Notes:           "recurring payroll",
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(models.ReviewProposed, resolved.Status)

	var proposal models.RuleProposal
	suite.Require().NoError(json.Unmarshal(resolved.RuleProposal, &proposal))
	suite.Equal("point-1", proposal.ResolvedPointID)
	suite.Equal("ACME LLC payroll", proposal.SampleDescription)
	suite.Equal("recurring payroll", proposal.Notes)
}

func (suite *ReviewServiceTestSuite) TestResolve_AutoFilledPointRejected() {
	ctx := context.Background()
	entry := &models.ReviewEntry{ReviewID: "rev-3", TransactionID: "txn-3", Status: models.ReviewPending}
	point := &models.DeclarationPoint{DeclarationPointID: "point-auto", Name: "Prefilled", IsAutoFilled: true}

	suite.mockReviewRepo.On("FindEntryByID", ctx, "rev-3").Return(entry, nil).Once()
	suite.mockPointRepo.On("FindPointByID", ctx, "point-auto").Return(point, nil).Once()

	_, err := suite.service.Resolve(ctx, "rev-3", dto.ResolveReviewRequest{ResolvedPointID: "point-auto"}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SetCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReviewServiceTestSuite) TestResolve_AlreadyResolved() {
	ctx := context.Background()
	now := time.Now()
	entry := &models.ReviewEntry{ReviewID: "rev-4", TransactionID: "txn-4", Status: models.ReviewResolved, ResolutionDate: &now}
	suite.mockReviewRepo.On("FindEntryByID", ctx, "rev-4").Return(entry, nil).Once()

	_, err := suite.service.Resolve(ctx, "rev-4", dto.ResolveReviewRequest{ResolvedPointID: "point-1"}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReviewServiceTestSuite) TestFinalizeProposal_CreatesConditionedRule() {
	ctx := context.Background()
	proposal, _ := json.Marshal(models.RuleProposal{
		ResolvedPointID:   "point-1",
		ResolvedPointName: "Point 7.1 Salary",
		SampleDescription: "ACME LLC payroll",
	})
	entry := &models.ReviewEntry{ReviewID: "rev-5", TransactionID: "txn-5", Status: models.ReviewProposed, RuleProposal: proposal}
	suite.mockReviewRepo.On("FindEntryByID", ctx, "rev-5").Return(entry, nil).Once()

	var saved *models.Rule
	suite.mockRuleRepo.On("SaveRule", ctx, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.Rule)
	}).Return(nil).Once()
	suite.mockReviewRepo.On("UpdateEntry", ctx, entry).Return(nil).Once()

	declID := "decl-1"
	rule, err := suite.service.FinalizeProposal(ctx, "rev-5", dto.FinalizeProposalRequest{
		Name:          "Payroll from ACME",
		Priority:      40,
		DeclarationID: &declID,
	}, "admin-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(saved)
	suite.Equal(models.DomainCategory, saved.Domain)
	suite.Equal("Payroll from ACME", saved.Name)
	suite.Equal(40, saved.Priority)
	suite.Require().NotNil(saved.DeclarationID)
	suite.Equal(declID, *saved.DeclarationID)
	suite.Require().NotNil(saved.ResultPointID)
	suite.Equal("point-1", *saved.ResultPointID)
	suite.JSONEq(`{"root_logic":"AND","groups":[{"group_logic":"AND","conditions":[{"field":"description","type":"CONTAINS_KEYWORD","value":"ACME LLC payroll"}]}]}`, string(rule.Conditions))
	suite.Equal(models.ReviewResolved, entry.Status)
}

func (suite *ReviewServiceTestSuite) TestFinalizeProposal_RequiresProposedStatus() {
	ctx := context.Background()
	entry := &models.ReviewEntry{ReviewID: "rev-6", TransactionID: "txn-6", Status: models.ReviewPending}
	suite.mockReviewRepo.On("FindEntryByID", ctx, "rev-6").Return(entry, nil).Once()

	_, err := suite.service.FinalizeProposal(ctx, "rev-6", dto.FinalizeProposalRequest{}, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRuleRepo.AssertNotCalled(suite.T(), "SaveRule", mock.Anything, mock.Anything)
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}

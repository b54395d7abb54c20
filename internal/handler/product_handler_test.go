package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_List(t *testing.T) {
	testProducts := []model.Product{
		{ID: "ps-5", Name: "PlayStation 5", Category: "tech", InStock: true, Price: decimal.RequireFromString("844.02"), Images: []string{"https://img/ps5.jpg"}},
		{ID: "apple-airtag", Name: "AirTag", Category: "tech", InStock: true, Price: decimal.RequireFromString("120.57"), Images: []string{}},
	}

	tests := []struct {
		name             string
		query            string
		expectedCategory string
		mockReturn       []model.Product
		mockError        error
		expectedStatus   int
	}{
		{
			name:             "Defaults to all",
			query:            "",
			expectedCategory: model.CategoryAll,
			mockReturn:       testProducts,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "Category selector",
			query:            "?category=tech",
			expectedCategory: "tech",
			mockReturn:       testProducts,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "Empty category",
			query:            "?category=clothes",
			expectedCategory: "clothes",
			mockReturn:       []model.Product{},
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "Service error",
			query:            "",
			expectedCategory: model.CategoryAll,
			mockError:        errors.New("database error"),
			expectedStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductResolver)
			handler := NewProductHandler(products, new(MockAttributeResolver), zerolog.Nop())

			products.On("Resolve", mock.Anything, tt.expectedCategory, "").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Len(t, got, len(tt.mockReturn))
			}
			products.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	detail := model.Product{
		ID:          "ps-5",
		Name:        "PlayStation 5",
		Category:    "tech",
		Description: "<p>Console</p>",
		Images:      []string{"https://img/1.jpg", "https://img/2.jpg"},
		Price:       decimal.RequireFromString("844.02"),
	}

	tests := []struct {
		name           string
		productID      string
		query          string
		category       string
		mockReturn     []model.Product
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Success",
			productID:      "ps-5",
			category:       model.CategoryAll,
			mockReturn:     []model.Product{detail},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not in category",
			productID:      "ps-5",
			query:          "?category=clothes",
			category:       "clothes",
			mockReturn:     []model.Product{},
			expectService:  true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Service error",
			productID:      "ps-5",
			category:       model.CategoryAll,
			mockError:      errors.New("database error"),
			expectService:  true,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Missing product ID",
			productID:      "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductResolver)
			handler := NewProductHandler(products, new(MockAttributeResolver), zerolog.Nop())

			if tt.expectService {
				products.On("Resolve", mock.Anything, tt.category, tt.productID).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products/"+tt.productID+tt.query, nil)
			req.SetPathValue("id", tt.productID)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, detail.Images, got.Images)
				assert.Equal(t, detail.Description, got.Description)
			}
			if tt.expectedStatus == http.StatusNotFound {
				assert.Equal(t, model.ErrCodeProductNotFound, decodeError(t, w).Error)
			}
			products.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Categories(t *testing.T) {
	products := new(MockProductResolver)
	handler := NewProductHandler(products, new(MockAttributeResolver), zerolog.Nop())

	products.On("Categories", mock.Anything).Return([]model.Category{{ID: 1, Name: "all"}, {ID: 2, Name: "tech"}}, nil)

	w := httptest.NewRecorder()
	handler.Categories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []model.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "tech", got[1].Name)
}

func TestProductHandler_Attributes(t *testing.T) {
	swatches := []model.AttributeValue{
		{ID: 3, Name: "Color", Kind: model.AttributeKindSwatch, ProductID: "ps-5", Value: "#44FF03", DisplayValue: "Green"},
	}
	set := &model.AttributeSet{
		Text:   []model.AttributeValue{{ID: 5, Name: "Capacity", Kind: model.AttributeKindText, ProductID: "ps-5", Value: "512G", DisplayValue: "512G"}},
		Swatch: swatches,
	}

	t.Run("Single kind", func(t *testing.T) {
		attributes := new(MockAttributeResolver)
		handler := NewProductHandler(new(MockProductResolver), attributes, zerolog.Nop())
		attributes.On("Resolve", mock.Anything, "ps-5", model.AttributeKindSwatch).Return(swatches, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products/ps-5/attributes?kind=swatch", nil)
		req.SetPathValue("id", "ps-5")
		w := httptest.NewRecorder()

		handler.Attributes(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []model.AttributeValue
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, swatches, got)
		attributes.AssertExpectations(t)
	})

	t.Run("Both kinds", func(t *testing.T) {
		attributes := new(MockAttributeResolver)
		handler := NewProductHandler(new(MockProductResolver), attributes, zerolog.Nop())
		attributes.On("ResolveAll", mock.Anything, "ps-5").Return(set, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products/ps-5/attributes", nil)
		req.SetPathValue("id", "ps-5")
		w := httptest.NewRecorder()

		handler.Attributes(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got model.AttributeSet
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Text, 1)
		assert.Len(t, got.Swatch, 1)
	})

	t.Run("Resolver error", func(t *testing.T) {
		attributes := new(MockAttributeResolver)
		handler := NewProductHandler(new(MockProductResolver), attributes, zerolog.Nop())
		attributes.On("Resolve", mock.Anything, "ps-5", model.AttributeKind("text")).Return(nil, errors.New("timeout"))

		req := httptest.NewRequest(http.MethodGet, "/api/products/ps-5/attributes?kind=text", nil)
		req.SetPathValue("id", "ps-5")
		w := httptest.NewRecorder()

		handler.Attributes(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
)

func TestOrderPlacedBody(t *testing.T) {
	order := &domain.Order{OrderNumber: "YC-20260831-AB12CD34", TotalAmount: 2750}

	body := orderPlacedBody("Asha", order)

	assert.True(t, strings.Contains(body, "Dear Asha"))
	assert.True(t, strings.Contains(body, "YC-20260831-AB12CD34"))
	assert.True(t, strings.Contains(body, "Rs. 2750.00"))
}

func TestOrderCancelledBody(t *testing.T) {
	order := &domain.Order{OrderNumber: "YC-20260831-AB12CD34"}

	body := orderCancelledBody("Asha", order)

	assert.True(t, strings.Contains(body, "has been cancelled"))
	assert.True(t, strings.Contains(body, "nothing has been charged"))
}

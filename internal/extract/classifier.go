package extract

import (
	"strings"

	"github.com/gestpos/gestsync/internal/domain"
)

// classifierRule maps a set of description keywords to a payment method
// type. Rules are evaluated in order; the first matching keyword wins.
type classifierRule struct {
	keywords []string
	result   domain.PaymentMethodType
}

// classifierRules is the fixed heuristic table for inferring a payment
// method's type from its free-text description. The gestionale carries no
// authoritative type column, so this is a deliberate heuristic, kept as an
// ordered table so it stays testable on its own.
var classifierRules = []classifierRule{
	{[]string{"contanti"}, domain.PaymentTypeCash},
	{[]string{"carta", "pos", "bancomat"}, domain.PaymentTypeCard},
	{[]string{"digitale", "satispay", "paypal"}, domain.PaymentTypeDigital},
	{[]string{"voucher", "buono"}, domain.PaymentTypeVoucher},
}

// ClassifyPaymentType infers the tender type from a payment method
// description by case-insensitive substring match, falling back to "other".
func ClassifyPaymentType(description string) domain.PaymentMethodType {
	d := strings.ToLower(description)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(d, kw) {
				return rule.result
			}
		}
	}
	return domain.PaymentTypeOther
}

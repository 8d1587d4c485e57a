package repository

import "courier-dispatch/internal/docstore"

// Document store layout shared with the admin console and courier app.
const (
	OrdersPath     = "Orders/NewOrders"
	PartnersPath   = "Accounts/DeliveryPartner"
	WaitingPath    = "Accounts/DeliveryPartner/OnlineDeliveryPartner/WaitingForOrders"
	DeliveringPath = "Accounts/DeliveryPartner/OnlineDeliveryPartner/OrderDelivering"
)

// OrderPath - shared queue entry of one order.
func OrderPath(orderID string) string {
	return docstore.Join(OrdersPath, orderID)
}

// WaitingPartnerPath - waiting pool entry of one partner.
func WaitingPartnerPath(partnerID string) string {
	return docstore.Join(WaitingPath, partnerID)
}

// DeliveringPartnerPath - delivering pool entry of one partner.
func DeliveringPartnerPath(partnerID string) string {
	return docstore.Join(DeliveringPath, partnerID)
}

// PartnerOrderPath - order entry in a partner's personal order list.
func PartnerOrderPath(partnerID, orderID string) string {
	return docstore.Join(PartnersPath, partnerID, "Orders", "NewOrders", orderID)
}

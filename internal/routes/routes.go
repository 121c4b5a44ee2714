package routes

const (
	// Health
	Health = "/health"

	// Tenant portal
	PortalHome              = "/api/v1/my/home"
	PortalLeases            = "/api/v1/my/leases"
	PortalLeaseDetail       = "/api/v1/my/leases/{leaseID}"
	PortalMaintenance       = "/api/v1/my/maintenance"
	PortalMaintenanceNew    = "/api/v1/my/maintenance/new"
	PortalMaintenanceItem   = "/api/v1/my/maintenance/{requestID}"
	PortalMaintenanceSubmit = "/api/v1/my/maintenance/create"

	// Invoice payment flow
	InvoiceTransaction = "/api/v1/invoices/{invoiceID}/transaction"
	InvoicePortalURL   = "/api/v1/invoices/{invoiceID}/portal-url"

	// Manager endpoints
	ManagerProperties        = "/api/v1/manager/properties"
	ManagerPropertyDetail    = "/api/v1/manager/properties/{propertyID}"
	ManagerUnits             = "/api/v1/manager/units"
	ManagerLeases            = "/api/v1/manager/leases"
	ManagerLeaseActivate     = "/api/v1/manager/leases/{leaseID}/activate"
	ManagerLeaseEnd          = "/api/v1/manager/leases/{leaseID}/end"
	ManagerLeaseDates        = "/api/v1/manager/leases/{leaseID}/dates"
	ManagerLeaseInvoice      = "/api/v1/manager/leases/{leaseID}/generate-invoice"
	ManagerInvoicePaid       = "/api/v1/manager/invoices/{invoiceID}/mark-paid"
	ManagerMaintenanceAssign = "/api/v1/manager/maintenance/{requestID}/assign"
	ManagerMaintenanceStart  = "/api/v1/manager/maintenance/{requestID}/start"
	ManagerMaintenanceDone   = "/api/v1/manager/maintenance/{requestID}/done"
	ManagerMaintenanceRelink = "/api/v1/manager/maintenance/{requestID}/relink"
)

package model

// AccountObject is the CRM object this tool operates on.
const AccountObject = "Account"

// AccountFields is the full field catalog queried from the record store.
// The list is deliberately wide; the fetcher chunks it to keep each SOQL
// statement within URL limits, and unknown names are filtered out against
// the live schema on a malformed-query response.
var AccountFields = []string{
	"Name",
	"AccountNumber",
	"Website",
	"Phone",
	"Fax",
	"Industry",
	"Type",
	"Rating",
	"Ownership",
	"Description",
	"NumberOfEmployees",
	"AnnualRevenue",
	"Sic",
	"SicDesc",
	"TickerSymbol",
	"ParentId",
	"OwnerId",
	"CreatedDate",
	"LastModifiedDate",
	"LastActivityDate",
	"BillingStreet",
	"BillingCity",
	"BillingState",
	"BillingPostalCode",
	"BillingCountry",
	"ShippingStreet",
	"ShippingCity",
	"ShippingState",
	"ShippingPostalCode",
	"ShippingCountry",
	"Account_Type__c",
	"Business_Type__c",
	"Restaurant_Type__c",
	"Cuisine__c",
	"Seats__c",
	"IsCustomer__c",
	"Customer_Since__c",
	"Onboarding_Stage__c",
	"Churn_Risk__c",
	"Booking_Engine__c",
	"Average_Ticket__c",
	"Monthly_Covers__c",
	"Impacted_Categories__c",
	"Prospection_Status__c",
	"Google_Place_ID__c",
	"Google_Data_ID__c",
	"Google_Rating__c",
	"Google_Review_Count__c",
	"Google_Price__c",
	"Google_Updated_Date__c",
	"Has_Google_Accept_Bookings_Extension__c",
	"Facebook_Page__c",
	"Instagram_Handle__c",
	"TripAdvisor_URL__c",
	"Michelin_Guide__c",
	"Opening_Hours__c",
	"Closed_Permanently__c",
	"Delivery_Enabled__c",
	"Takeout_Enabled__c",
	"Reservation_Widget_Installed__c",
	"POS_Vendor__c",
	"Contract_End_Date__c",
	"Last_Enrichment_Run__c",
}

// EnrichmentFields is the fixed set of output fields the enrichment client
// derives and the reconciler is allowed to push back.
var EnrichmentFields = []string{
	"Restaurant_Type__c",
	"Google_Rating__c",
	"Google_Review_Count__c",
	"Google_Data_ID__c",
	"Google_Place_ID__c",
	"Google_Updated_Date__c",
	"Google_Price__c",
	"Has_Google_Accept_Bookings_Extension__c",
	"Prospection_Status__c",
}

// PlaceIDFields are checked, in order, for an existing external place
// identifier. A record carrying any of these is never sent to the lookup
// service again.
var PlaceIDFields = []string{
	"Google_Place_ID__c",
	"Google_Data_ID__c",
	"Google_Place_ID",
	"place_id",
}

package handler

// XLSXContentTypeForTest exposes xlsxContentType to tests in package handler_test.
const XLSXContentTypeForTest = xlsxContentType

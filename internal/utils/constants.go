package utils

// Extra origin allowed when the cors_high_security flag is off, so local
// frontends can talk to a deployed backend.
const CORSLowSecurityAllowedOriginLocalhost = "http://localhost:3000"
